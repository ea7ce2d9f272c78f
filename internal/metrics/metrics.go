// Package metrics exports Prometheus collectors for the ROI engine, the wallet
// and referral services, and the HTTP layer.
package metrics

import (
	"strconv"
	"time"

	"investa/internal/services/roi"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

// Collector implements the MetricsCollector interfaces of the roi, wallet and
// referral services.
type Collector struct {
	roiEntries      *prometheus.CounterVec
	roiAccrued      prometheus.Counter
	sweeps          *prometheus.CounterVec
	sweepDuration   *prometheus.HistogramVec
	withdrawals     *prometheus.CounterVec
	withdrawnAmount *prometheus.CounterVec
	serviceErrors   *prometheus.CounterVec
	referralFees    *prometheus.CounterVec
	referralAmount  prometheus.Counter
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// New registers every collector on reg.
func New(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		roiEntries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "investa_roi_entries_total",
			Help: "Daily ROI entries by outcome",
		}, []string{"outcome"}),
		roiAccrued: f.NewCounter(prometheus.CounterOpts{
			Name: "investa_roi_accrued_amount_total",
			Help: "Sum of ROI amounts written",
		}),
		sweeps: f.NewCounterVec(prometheus.CounterOpts{
			Name: "investa_roi_sweeps_total",
			Help: "ROI sweeps by trigger and result",
		}, []string{"trigger", "result"}),
		sweepDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "investa_roi_sweep_duration_seconds",
			Help:    "Duration of ROI sweeps",
			Buckets: []float64{.01, .05, .1, .5, 1, 5, 15, 60, 300},
		}, []string{"trigger"}),
		withdrawals: f.NewCounterVec(prometheus.CounterOpts{
			Name: "investa_withdrawals_total",
			Help: "Withdrawal events",
		}, []string{"event"}),
		withdrawnAmount: f.NewCounterVec(prometheus.CounterOpts{
			Name: "investa_withdrawal_amount_total",
			Help: "Withdrawal amounts by event",
		}, []string{"event"}),
		serviceErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "investa_service_errors_total",
			Help: "Rejected or failed service operations",
		}, []string{"operation", "type"}),
		referralFees: f.NewCounterVec(prometheus.CounterOpts{
			Name: "investa_referral_fees_total",
			Help: "Referral fee generation outcomes",
		}, []string{"outcome"}),
		referralAmount: f.NewCounter(prometheus.CounterOpts{
			Name: "investa_referral_fee_amount_total",
			Help: "Sum of referral fees written",
		}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "investa_http_requests_total",
			Help: "HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "investa_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2, 5},
		}, []string{"method", "route"}),
	}
}

func amount(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

func (c *Collector) RecordROIEntry(outcome string, a decimal.Decimal) {
	c.roiEntries.WithLabelValues(outcome).Inc()
	if outcome == roi.OutcomeCreated {
		c.roiAccrued.Add(amount(a))
	}
}

func (c *Collector) RecordSweep(trigger string, duration time.Duration, result *roi.SweepResult) {
	outcome := "ran"
	switch {
	case result == nil:
		outcome = "error"
	case !result.Ran():
		outcome = "skipped"
	}
	c.sweeps.WithLabelValues(trigger, outcome).Inc()
	c.sweepDuration.WithLabelValues(trigger).Observe(duration.Seconds())
}

func (c *Collector) RecordWithdrawal(event string, a decimal.Decimal) {
	c.withdrawals.WithLabelValues(event).Inc()
	if a.IsPositive() {
		c.withdrawnAmount.WithLabelValues(event).Add(amount(a))
	}
}

func (c *Collector) RecordError(operation, errType string) {
	c.serviceErrors.WithLabelValues(operation, errType).Inc()
}

func (c *Collector) RecordReferralFee(outcome string, a decimal.Decimal) {
	c.referralFees.WithLabelValues(outcome).Inc()
	if a.IsPositive() {
		c.referralAmount.Add(amount(a))
	}
}

// Middleware records request counts and latency per matched route.
func (c *Collector) Middleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		start := time.Now()
		if err := ctx.Next(); err != nil {
			// render the error now so the recorded status is the final one
			if herr := ctx.App().ErrorHandler(ctx, err); herr != nil {
				_ = ctx.SendStatus(fiber.StatusInternalServerError)
			}
		}

		route := ctx.Route().Path
		status := strconv.Itoa(ctx.Response().StatusCode())
		c.httpRequests.WithLabelValues(ctx.Method(), route, status).Inc()
		c.httpDuration.WithLabelValues(ctx.Method(), route).Observe(time.Since(start).Seconds())
		return nil
	}
}
