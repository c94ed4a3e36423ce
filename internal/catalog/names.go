package catalog

import (
	"path"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var genderSuffix = regexp.MustCompile(`(?i) [MF]$`)

// DisplayName strips the trailing " M" / " F" marker used by asset files.
func DisplayName(name string) string {
	return strings.TrimSpace(genderSuffix.ReplaceAllString(strings.TrimSpace(name), ""))
}

// GenderFromFilename reads the -m / -f marker from an asset file name.
// A name carrying neither is unisex.
func GenderFromFilename(filename string) Gender {
	lower := strings.ToLower(path.Base(filename))
	switch {
	case strings.Contains(lower, "-f"):
		return GenderFemale
	case strings.Contains(lower, "-m"):
		return GenderMale
	default:
		return GenderUnisex
	}
}

// TitleFromFilename turns "textured-crop_m.png" into "Textured Crop M".
func TitleFromFilename(filename string) string {
	base := path.Base(filename)
	base = strings.TrimSuffix(base, path.Ext(base))
	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)
	return cases.Title(language.English, cases.NoLower).String(strings.Join(strings.Fields(base), " "))
}
