package schedulerRepo

import (
	"math"
	"time"

	"bookly/models"
)

// StatusAggregate is one $group row of the stats pipeline.
type StatusAggregate struct {
	Status   models.BookingStatus `bson:"_id"`
	Count    int64                `bson:"count"`
	Total    float64              `bson:"total"`
	Earnings float64              `bson:"earnings"`
	Fees     float64              `bson:"fees"`
	Deposits float64              `bson:"deposits"`
	Refunds  float64              `bson:"refunds"`
}

// FoldStats turns per-status rows into SpecialistStats. Revenue counts
// completed bookings only; a customer-cancelled booking keeps its deposit.
func FoldStats(specialistID string, from, to *time.Time, rows []StatusAggregate) *models.SpecialistStats {
	stats := &models.SpecialistStats{
		SpecialistID: specialistID,
		From:         from,
		To:           to,
		ByStatus:     make(map[models.BookingStatus]int64),
	}
	for _, row := range rows {
		stats.Total += row.Count
		stats.ByStatus[row.Status] += row.Count
		switch row.Status {
		case models.StatusCompleted:
			stats.Revenue += row.Total
			stats.SpecialistEarnings += row.Earnings
			stats.PlatformFees += row.Fees
		case models.StatusCancelled:
			stats.RefundsIssued += row.Refunds
			stats.DepositsForfeited += row.Deposits - row.Refunds
		}
	}
	stats.Revenue = round2(stats.Revenue)
	stats.SpecialistEarnings = round2(stats.SpecialistEarnings)
	stats.PlatformFees = round2(stats.PlatformFees)
	stats.RefundsIssued = round2(stats.RefundsIssued)
	stats.DepositsForfeited = round2(stats.DepositsForfeited)
	return stats
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
