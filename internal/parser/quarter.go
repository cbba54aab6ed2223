package parser

import (
	"regexp"
	"strings"

	"secure-rag/internal/models"
)

var (
	filenameQuarterRe = regexp.MustCompile(models.FilenameQuarterRegex)
	headingQuarterRe  = regexp.MustCompile(models.HeadingQuarterRegex)
)

// QuarterFromFilename reads a `_qN_` segment of a file name.
func QuarterFromFilename(name string) models.Quarter {
	m := filenameQuarterRe.FindStringSubmatch(name)
	if m == nil {
		return models.QuarterNone
	}
	return models.Quarter("Q" + m[1])
}

// QuarterFromHeading finds the first `QN` token in a heading.
func QuarterFromHeading(heading string) (models.Quarter, bool) {
	m := headingQuarterRe.FindStringSubmatch(heading)
	if m == nil {
		return "", false
	}
	return models.Quarter(strings.ToUpper("Q" + m[1])), true
}
