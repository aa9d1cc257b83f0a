package database

import (
	"strings"

	"gorm.io/gorm"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching term literally anywhere in a
// value. Queries using it must declare ESCAPE '\'.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

// lowerLike lowers term the way the connected database's LOWER() does.
// SQLite only folds ASCII letters, so Unicode lowering there would miss
// stored values such as "CRÈME".
func lowerLike(db *gorm.DB, term string) string {
	if db.Dialector != nil && db.Dialector.Name() == "sqlite" {
		return strings.Map(func(r rune) rune {
			if 'A' <= r && r <= 'Z' {
				return r + ('a' - 'A')
			}
			return r
		}, term)
	}
	return strings.ToLower(term)
}
