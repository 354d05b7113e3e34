package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/jorgekof/hostreamly-admin/internal/domain"
	dombilling "github.com/jorgekof/hostreamly-admin/internal/domain/billing"
	domcred "github.com/jorgekof/hostreamly-admin/internal/domain/credential"
	"github.com/jorgekof/hostreamly-admin/internal/domain/money"
)

var timeNow = func() time.Time { return time.Now().UTC() }

// checkCredential probes the stored secret, or the config fallback when none is stored.
// The command fails when the probe fails, so it can gate deploys.
func checkCredential(c *cli.Context) error {
	d, err := bootstrap(c)
	if err != nil {
		return err
	}
	defer d.Close()

	st, err := d.credentials.TestConnection(c.Context)
	switch {
	case errors.Is(err, domain.ErrCredentialNotConfigured) && d.cfg.Provider.SecretKey != "":
		probe := d.provider.TestConnection(c.Context, d.cfg.Provider.SecretKey)
		res := probe.Result(timeNow())
		st = domcred.Status{
			Config:          domcred.ConfigUnset,
			Test:            res.State,
			Message:         res.Message,
			TestedAt:        res.TestedAt,
			MaskedSecretKey: domcred.Mask(d.cfg.Provider.SecretKey),
		}
		fmt.Fprintln(c.App.Writer, "source:     config fallback")
	case err != nil:
		return err
	default:
		fmt.Fprintln(c.App.Writer, "source:     stored credential")
	}

	printCredentialStatus(c.App.Writer, st)
	if st.Test != domcred.TestSuccess {
		return cli.Exit("connectivity test failed", 2)
	}
	return nil
}

func printCredentialStatus(w io.Writer, st domcred.Status) {
	fmt.Fprintf(w, "secret key: %s\n", st.MaskedSecretKey)
	fmt.Fprintf(w, "test:       %s\n", st.Test)
	if st.Message != "" {
		fmt.Fprintf(w, "message:    %s\n", st.Message)
	}
	if !st.TestedAt.IsZero() {
		fmt.Fprintf(w, "tested at:  %s\n", money.FormatTime(st.TestedAt))
	}
}

// overage prints the account's current overage and charges.
func overage(c *cli.Context) error {
	d, err := bootstrap(c)
	if err != nil {
		return err
	}
	defer d.Close()

	sum, err := d.billing.Summary(c.Context, c.String("account"))
	if err != nil {
		return err
	}
	printSummary(c.App.Writer, d.formatter, sum)
	return nil
}

func printSummary(w io.Writer, f *money.Formatter, sum dombilling.Summary) {
	snap := sum.Snapshot
	fmt.Fprintf(w, "storage:   %g GB used of %s, overage %g GB, %s\n",
		snap.StorageUsed(), snap.StorageLimit(), sum.Overage.Storage, f.Format(sum.Charges.StorageCharge))
	fmt.Fprintf(w, "bandwidth: %g GB used of %s, overage %g GB, %s\n",
		snap.BandwidthUsed(), snap.BandwidthLimit(), sum.Overage.Bandwidth, f.Format(sum.Charges.BandwidthCharge))
	fmt.Fprintf(w, "total:     %s\n", f.Format(sum.Charges.TotalCharge))
	for _, t := range sum.Thresholds {
		switch {
		case t.Exceeded:
			fmt.Fprintf(w, "warning:   %s quota exceeded\n", t.Resource)
		case t.Approaching:
			fmt.Fprintf(w, "notice:    %s usage at %.0f%% of quota\n", t.Resource, t.Fraction*100)
		}
	}
}
