package syncer

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"strings"

	"ChannelSync/internal/domain"
)

// Fingerprint hashes the fields whose change warrants a rewrite. List fields
// are sorted first so their order does not matter.
func Fingerprint(a domain.Article) string {
	fields := []string{
		a.Title,
		a.Content,
		string(a.Category),
		sortedJoin(a.Countries),
		sortedJoin(a.Organizations),
		a.ImageURL,
		a.VideoURL,
	}
	sum := sha256.Sum256([]byte(strings.Join(fields, "|")))
	return hex.EncodeToString(sum[:])
}

func sortedJoin(items []string) string {
	sorted := slices.Clone(items)
	slices.Sort(sorted)
	return strings.Join(sorted, ",")
}
