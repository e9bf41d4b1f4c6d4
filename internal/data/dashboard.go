package data

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

const (
	pathMonthlyCounts       = "/api/v1/dashboard/monthly-counts"
	pathStatusMonthlyCounts = "/api/v1/dashboard/status-monthly-counts"
	pathPhoneRanking        = "/api/v1/dashboard/phone-num-ranking"
)

// MonthlyCounts fetches the per-month volume for userEmail in year.
// A response without exactly twelve counts is rejected.
func (c *Client) MonthlyCounts(ctx context.Context, userEmail string, year int) (*MonthlyCounts, error) {
	var res MonthlyCounts
	err := c.do(ctx, call{
		svc:    ServiceDashboard,
		method: http.MethodGet,
		path:   pathMonthlyCounts,
		query:  url.Values{"userEmail": {userEmail}, "year": {strconv.Itoa(year)}},
		out:    &res,
	})
	if err != nil {
		return nil, err
	}
	if len(res.Counts) != 12 {
		return nil, &DecodeError{
			Service: ServiceDashboard,
			Path:    pathMonthlyCounts,
			Err:     fmt.Errorf("expected 12 monthly counts, got %d", len(res.Counts)),
		}
	}
	return &res, nil
}

// StatusMonthlyCounts fetches delivered/failed totals for one month.
func (c *Client) StatusMonthlyCounts(ctx context.Context, year, month int) (*StatusCounts, error) {
	var res StatusCounts
	err := c.do(ctx, call{
		svc:    ServiceDashboard,
		method: http.MethodGet,
		path:   pathStatusMonthlyCounts,
		query:  url.Values{"year": {strconv.Itoa(year)}, "month": {strconv.Itoa(month)}},
		out:    &res,
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// PhoneRanking fetches recipient numbers ordered by how often userEmail messaged them.
func (c *Client) PhoneRanking(ctx context.Context, userEmail string) ([]PhoneRank, error) {
	var res []PhoneRank
	err := c.do(ctx, call{
		svc:    ServiceDashboard,
		method: http.MethodGet,
		path:   pathPhoneRanking,
		query:  url.Values{"userEmail": {userEmail}},
		out:    &res,
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
