package service

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/ledger"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/metrics"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/period"
)

// Options carries the collaborators shared by every service.
// The zero value is usable; unset fields fall back to defaults and a nil
// Metrics records nothing.
type Options struct {
	Policy  ledger.Policy
	Clock   period.Clock
	Logger  *zerolog.Logger
	Metrics *metrics.Metrics
}

func (o Options) withDefaults() Options {
	if o.Policy.CompanyMembershipID == "" {
		o.Policy.CompanyMembershipID = ledger.DefaultCompanyMembershipID
	}
	if o.Clock == nil {
		o.Clock = period.SystemClock{}
	}
	if o.Logger == nil {
		nop := zerolog.Nop()
		o.Logger = &nop
	}
	return o
}

// logger returns a sub-logger for the named component.
func (o Options) logger(component string) zerolog.Logger {
	return o.Logger.With().Str("component", component).Logger()
}

// now returns the current time in UTC.
func (o Options) now() time.Time {
	return o.Clock.Now().UTC()
}

// currentPeriod returns the only period that accepts new activity.
func (o Options) currentPeriod() period.Period {
	return period.Current(o.Clock)
}
