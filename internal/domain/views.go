package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyStats is the per-period projection over all obligations.
// TotalRemaining counts only unpaid and partial remainders: a settled
// (forgiven) balance is not outstanding, so it is reported separately
// as SettledAmount.
type MonthlyStats struct {
	Period         Period          `json:"period"`
	TotalCount     int             `json:"totalCount"`
	FullCount      int             `json:"fullCount"`
	PartialCount   int             `json:"partialCount"`
	SettledCount   int             `json:"settledCount"`
	UnpaidCount    int             `json:"unpaidCount"`
	TotalPaid      decimal.Decimal `json:"totalPaid"`
	TotalRemaining decimal.Decimal `json:"totalRemaining"`
	SettledAmount  decimal.Decimal `json:"settledAmount"`
}

// ClientMonthRow is one period of a subscriber's month-by-month view.
type ClientMonthRow struct {
	Period           Period          `json:"period"`
	ObligationAmount decimal.Decimal `json:"obligationAmount"`
	TotalPaid        decimal.Decimal `json:"totalPaid"`
	Remaining        decimal.Decimal `json:"remaining"`
	Status           Status          `json:"status"`
	PaidDate         *time.Time      `json:"paidDate,omitempty"`
}

// UnpaidRank is one row of the top-unpaid ranking for a period.
type UnpaidRank struct {
	SubscriberID   int64           `json:"subscriberId"`
	SubscriberName string          `json:"subscriberName"`
	BuildingName   string          `json:"buildingName"`
	Period         Period          `json:"period"`
	Amount         decimal.Decimal `json:"amount"`
	TotalPaid      decimal.Decimal `json:"totalPaid"`
	Remaining      decimal.Decimal `json:"remaining"`
	Status         Status          `json:"status"`
}

// EntryKind classifies a subscriber's same-day activity by sign.
type EntryKind string

const (
	EntryKindPayment EntryKind = "payment"
	EntryKindRefund  EntryKind = "refund"
	EntryKindNone    EntryKind = "none"
)

// DailySubscriberRow is one subscriber in the daily collection view:
// either same-day activity, or an overlay row (TodayPaid zero, kind
// none) for a subscriber still owing for the period.
type DailySubscriberRow struct {
	SubscriberID   int64           `json:"subscriberId"`
	SubscriberName string          `json:"subscriberName"`
	TodayPaid      decimal.Decimal `json:"todayPaid"`
	Kind           EntryKind       `json:"kind"`
	Status         Status          `json:"status"`
	Remaining      decimal.Decimal `json:"remaining"`
}

// DailyBuildingGroup groups the daily rows of one building.
type DailyBuildingGroup struct {
	BuildingID     int64                 `json:"buildingId"`
	BuildingName   string                `json:"buildingName"`
	Subscribers    []*DailySubscriberRow `json:"subscribers"`
	TotalCollected decimal.Decimal       `json:"totalCollected"`
}

// DailyCollection is the full daily collection breakdown for a day
// window evaluated against one billing period.
type DailyCollection struct {
	DayStart       time.Time             `json:"dayStart"`
	DayEnd         time.Time             `json:"dayEnd"`
	Period         Period                `json:"period"`
	Buildings      []*DailyBuildingGroup `json:"buildings"`
	TotalCollected decimal.Decimal       `json:"totalCollected"`
}
