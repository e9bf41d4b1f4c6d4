package dashboard

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jaigner-hub/msgdesk/internal/data"
	"github.com/jaigner-hub/msgdesk/internal/validate"
)

// TopN is how many ranking rows are shown.
const TopN = 5

// Service is the dashboard collaborator.
type Service interface {
	MonthlyCounts(ctx context.Context, userEmail string, year int) (*data.MonthlyCounts, error)
	StatusMonthlyCounts(ctx context.Context, year, month int) (*data.StatusCounts, error)
	PhoneRanking(ctx context.Context, userEmail string) ([]data.PhoneRank, error)
}

// MonthlyQuery parameterizes the monthly volume panel.
type MonthlyQuery struct {
	UserEmail string
	Year      int
}

func (q MonthlyQuery) Validate() error {
	if !validate.Email(q.UserEmail) {
		return fmt.Errorf("user email %q is not valid", q.UserEmail)
	}
	return validYear(q.Year)
}

// StatusQuery parameterizes the delivery status panel.
type StatusQuery struct {
	Year  int
	Month int
}

func (q StatusQuery) Validate() error {
	if err := validYear(q.Year); err != nil {
		return err
	}
	if q.Month < 1 || q.Month > 12 {
		return fmt.Errorf("month %d must be between 1 and 12", q.Month)
	}
	return nil
}

// RankingQuery parameterizes the recipient ranking panel.
type RankingQuery struct {
	UserEmail string
}

func (q RankingQuery) Validate() error {
	if !validate.Email(q.UserEmail) {
		return fmt.Errorf("user email %q is not valid", q.UserEmail)
	}
	return nil
}

func validYear(y int) error {
	if y < 2000 || y > 9999 {
		return fmt.Errorf("year %d is out of range", y)
	}
	return nil
}

// Monthly is the volume panel's result with its derived figures.
type Monthly struct {
	Counts [12]int
	Total  int
	Cost   float64
}

// Status is the delivery panel's result with its derived figures.
type Status struct {
	data.StatusCounts
	Total         int
	DeliveredRate float64
	FailedRate    float64
}

type (
	MonthlyPanel = Panel[MonthlyQuery, Monthly]
	StatusPanel  = Panel[StatusQuery, Status]
	RankingPanel = Panel[RankingQuery, []data.PhoneRank]
)

// Board groups the three panels.
type Board struct {
	Monthly *MonthlyPanel
	Status  *StatusPanel
	Ranking *RankingPanel

	// CostPerMessage multiplies the monthly total into a cost figure.
	CostPerMessage float64
}

// NewBoard returns panels defaulted to owner and the month containing now.
func NewBoard(owner string, now time.Time, costPerMessage float64) *Board {
	return &Board{
		Monthly:        NewPanel[MonthlyQuery, Monthly](MonthlyQuery{UserEmail: owner, Year: now.Year()}),
		Status:         NewPanel[StatusQuery, Status](StatusQuery{Year: now.Year(), Month: int(now.Month())}),
		Ranking:        NewPanel[RankingQuery, []data.PhoneRank](RankingQuery{UserEmail: owner}),
		CostPerMessage: costPerMessage,
	}
}

// FetchMonthly runs q against svc and derives totals.
func FetchMonthly(ctx context.Context, svc Service, q MonthlyQuery, costPerMessage float64) (Monthly, error) {
	if err := q.Validate(); err != nil {
		return Monthly{}, err
	}
	res, err := svc.MonthlyCounts(ctx, q.UserEmail, q.Year)
	if err != nil {
		return Monthly{}, err
	}
	var m Monthly
	copy(m.Counts[:], res.Counts)
	m.Total = Total(res.Counts)
	m.Cost = Cost(m.Total, costPerMessage)
	return m, nil
}

// FetchStatus runs q against svc and derives the breakdown.
func FetchStatus(ctx context.Context, svc Service, q StatusQuery) (Status, error) {
	if err := q.Validate(); err != nil {
		return Status{}, err
	}
	res, err := svc.StatusMonthlyCounts(ctx, q.Year, q.Month)
	if err != nil {
		return Status{}, err
	}
	d, f := Breakdown(res.Delivered, res.Failed)
	return Status{
		StatusCounts:  *res,
		Total:         res.Delivered + res.Failed,
		DeliveredRate: d,
		FailedRate:    f,
	}, nil
}

// FetchRanking runs q against svc and keeps the top TopN rows.
func FetchRanking(ctx context.Context, svc Service, q RankingQuery) ([]data.PhoneRank, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	res, err := svc.PhoneRanking(ctx, q.UserEmail)
	if err != nil {
		return nil, err
	}
	return TopRanks(res, TopN), nil
}

// Total sums counts.
func Total(counts []int) int {
	n := 0
	for _, c := range counts {
		n += c
	}
	return n
}

// Cost is total messages times the per-message multiplier.
func Cost(total int, perMessage float64) float64 {
	return float64(total) * perMessage
}

// Breakdown returns delivered and failed as percentages of their sum.
// Both are zero when nothing was sent.
func Breakdown(delivered, failed int) (float64, float64) {
	total := delivered + failed
	if total <= 0 {
		return 0, 0
	}
	d := float64(delivered) * 100 / float64(total)
	return d, 100 - d
}

// TopRanks returns the n most messaged numbers, highest count first.
// Equal counts keep server order.
func TopRanks(ranks []data.PhoneRank, n int) []data.PhoneRank {
	out := make([]data.PhoneRank, len(ranks))
	copy(out, ranks)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
