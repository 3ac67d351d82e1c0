package analytics

import (
	"math"
	"strconv"
	"time"

	"edipulse/pkg/contracts/domain"
)

// seasonality computes month-of-year statistics over the period series. A month
// peaks when its mean exceeds the overall mean by more than one overall
// population standard deviation. Fewer than two distinct years yields no verdicts.
func seasonality(series []domain.PeriodMetrics) domain.Seasonality {
	var all []float64
	byMonth := make(map[int][]float64, 12)
	years := make(map[string]bool)

	for _, pm := range series {
		month, err := strconv.Atoi(pm.Period[4:6])
		if err != nil {
			continue
		}
		years[pm.Period[:4]] = true
		all = append(all, pm.Volume)
		byMonth[month] = append(byMonth[month], pm.Volume)
	}

	overallMean, overallStd := meanStdDev(all)
	s := domain.Seasonality{
		Status:        domain.SeasonalityInsufficientData,
		Years:         len(years),
		OverallMean:   overallMean,
		OverallStdDev: overallStd,
	}
	if len(years) < 2 {
		return s
	}

	s.Status = domain.SeasonalityOK
	threshold := overallMean + overallStd
	for m := 1; m <= 12; m++ {
		values := byMonth[m]
		if len(values) == 0 {
			continue
		}
		mean, std := meanStdDev(values)
		s.Months = append(s.Months, domain.MonthSeason{
			Month:   m,
			Name:    time.Month(m).String(),
			Samples: len(values),
			Mean:    mean,
			StdDev:  std,
			Peak:    mean > threshold,
		})
	}
	return s
}

// meanStdDev returns the mean and population standard deviation
func meanStdDev(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return mean, math.Sqrt(sq / float64(len(values)))
}
