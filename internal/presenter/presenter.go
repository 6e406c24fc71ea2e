// Package presenter turns raw catalog records into display values.
//
// Every function here is pure. Views call them on each render and never
// cache the results.
package presenter

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/vadimtrunov/Marquee/internal/genre"
	"github.com/vadimtrunov/Marquee/internal/metadata/tmdb"
)

// GenreUnavailable is returned by ResolveGenreNames when the record has
// no genre sequence.
const GenreUnavailable = "Genre data not available"

// roundHalfUp rounds x to the nearest integer, halves toward +Inf.
func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

// RatingPercentage converts a 0-10 vote average into a percentage rounded
// to one decimal place. Out-of-range input passes through the arithmetic.
func RatingPercentage(voteAverage float64) float64 {
	return roundOneDecimal(voteAverage / 10 * 100)
}

// roundOneDecimal rounds the exact binary value of x to one decimal,
// ties away from zero. The scaling by 10 is exact.
func roundOneDecimal(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	scaled := new(big.Float).SetPrec(128).SetFloat64(math.Abs(x))
	scaled.Mul(scaled, big.NewFloat(10))
	scaled.Add(scaled, big.NewFloat(0.5))
	n, _ := scaled.Int(nil)
	tenths, _ := new(big.Float).SetInt(n).Float64()
	return math.Copysign(tenths/10, x)
}

// FormatRatingPercentage renders RatingPercentage with exactly one decimal.
func FormatRatingPercentage(voteAverage float64) string {
	return strconv.FormatFloat(RatingPercentage(voteAverage), 'f', 1, 64)
}

// FormatVoteCount abbreviates counts of 1000 and above to thousands with at
// most one decimal: round(count/100)/10 followed by "k".
func FormatVoteCount(count int) string {
	if count < 1000 {
		return strconv.Itoa(count)
	}
	thousands := roundHalfUp(float64(count)/100) / 10
	return strconv.FormatFloat(thousands, 'f', -1, 64) + "k"
}

// ResolveGenreNames maps ids through table and joins the known names with
// ", " in input order. Unknown ids are dropped. A nil slice yields
// GenreUnavailable.
func ResolveGenreNames(ids []int, table *genre.Table) string {
	if ids == nil {
		return GenreUnavailable
	}
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := table.Name(id); ok {
			names = append(names, name)
		}
	}
	return strings.Join(names, ", ")
}

// ImageURL joins an image base URL and a TMDb path fragment.
func ImageURL(base, path string) string {
	return tmdb.PosterURL(base, path)
}

// FormatRuntime renders minutes as "139min", or "" when unknown.
func FormatRuntime(minutes int) string {
	if minutes <= 0 {
		return ""
	}
	return strconv.Itoa(minutes) + "min"
}

// ReleaseYear returns the year part of a YYYY-MM-DD date.
func ReleaseYear(date string) string {
	if len(date) < 4 {
		return ""
	}
	return date[:4]
}
