package cadastre

import "fmt"

// Compose renders the profile's sentence for a segment. crossed may be empty.
func Compose(length float64, direction, crossed string, p *Profile) string {
	return fmt.Sprintf(p.SentenceTemplate, formatNumber(length), direction, crossed)
}
