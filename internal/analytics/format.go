package analytics

import "fmt"

// FormatRate renders a growth rate as a signed percentage, or N/A when undefined
func FormatRate(rate *float64) string {
	if rate == nil {
		return "N/A"
	}
	return fmt.Sprintf("%+.1f%%", *rate*100)
}

// FormatShare renders a share in [0,1] as a percentage
func FormatShare(share float64) string {
	return fmt.Sprintf("%.1f%%", share*100)
}

// FormatEfficiency renders kilocharacters per document, or N/A when undefined
func FormatEfficiency(eff *float64) string {
	if eff == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", *eff)
}
