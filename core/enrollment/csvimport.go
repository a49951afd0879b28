package enrollment

import (
	"context"
	"encoding/csv"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

// Required CSV headers, as exported by the scheduling tool.
const (
	colClassName = "Class Name"
	colGrade     = "Grade Level"
	colTerm      = "Term"
	colSchedule  = "Schedule"
	colTeacher   = "Teacher"
	colCountMax  = "Student Count/Max"
)

var requiredHeaders = []string{colClassName, colGrade, colTerm, colSchedule, colTeacher, colCountMax}

var (
	ErrMissingHeaders = errors.New("missing CSV headers")

	wsRegex      = regexp.MustCompile(`\s+`)
	numRegex     = regexp.MustCompile(`\d+`)
	blockRegex   = regexp.MustCompile(`B(\d)`)
	bracketRegex = regexp.MustCompile(`\s*\[.*\]`)
	teacherRegex = regexp.MustCompile(`^([^,]+),\s*([^(]+)(?:\s*\((.+)\))?`)
	countRegex   = regexp.MustCompile(`^(\d+)\s*/\s*(\d+)`)
)

// TeacherLookupFunc resolves a teacher's user ID from their first and last
// names. An empty ID with a nil error means the teacher is unknown.
type TeacherLookupFunc func(ctx context.Context, firstName, lastName string) (string, error)

type (
	// Importer loads classes from the scheduling tool's CSV export.
	Importer struct {
		svc           *Service
		lookupTeacher TeacherLookupFunc
		logger        core.Logger
	}

	ImportResult struct {
		Created int `json:"created"`
		Skipped int `json:"skipped"`
		Failed  int `json:"failed"`
	}
)

func NewImporter(svc *Service, lookupTeacher TeacherLookupFunc, logger core.Logger) *Importer {
	return &Importer{svc: svc, lookupTeacher: lookupTeacher, logger: logger}
}

// Import reads the CSV export and creates one class per unique (name, term)
// row. Rows with an invalid term are skipped; unknown teachers are logged
// and the class is created unowned.
func (imp *Importer) Import(ctx context.Context, r io.Reader) (ImportResult, error) {
	var res ImportResult

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return res, errors.Wrap(err, "reading CSV header")
	}
	cols, err := mapHeaders(header)
	if err != nil {
		return res, err
	}

	type classKey struct {
		name string
		term string
	}
	seen := make(map[classKey]bool)

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return res, errors.Wrap(err, "reading CSV row")
		}

		cell := func(col string) string {
			idx, ok := cols[col]
			if !ok || idx >= len(record) {
				return ""
			}
			return cleanCell(record[idx])
		}

		name := strings.TrimSpace(bracketRegex.ReplaceAllString(cell(colClassName), ""))
		rawTerm := cell(colTerm)

		key := classKey{name, rawTerm}
		if seen[key] {
			imp.logger.Warn("skipping duplicate class", map[string]interface{}{"class": name, "term": rawTerm})
			res.Skipped++
			continue
		}
		seen[key] = true

		term := normalizeTerm(rawTerm)
		if !term.isValid() {
			imp.logger.Warn("skipping class with invalid term", map[string]interface{}{"class": name, "term": rawTerm})
			res.Skipped++
			continue
		}

		days, blocks := parseSchedule(cell(colSchedule))

		var teacherID string
		if first, last, ok := parseTeacherName(cell(colTeacher)); ok {
			teacherID, err = imp.lookupTeacher(ctx, first, last)
			if err != nil {
				imp.logger.Error("looking up teacher", err, map[string]interface{}{"class": name})
			} else if teacherID == "" {
				imp.logger.Warn("teacher not found", map[string]interface{}{"class": name, "teacher": first + " " + last})
			}
		}

		count, maxSize, _ := parseCountMax(cell(colCountMax))

		nc := NewClass{
			Name:        name,
			GradeLevels: normalizeGradeLevels(cell(colGrade)),
			Term:        term,
			// the export carries no program column; default to enrichment
			// and let the registrar correct it afterwards
			Program:        ProgramEnrichment,
			Days:           days,
			ScheduleBlocks: blocks,
			MaxSize:        maxSize,
			TeacherID:      teacherID,
		}
		if err := nc.Validate(); err != nil {
			imp.logger.Warn("skipping invalid class row", err, map[string]interface{}{"class": name})
			res.Failed++
			continue
		}
		if _, err := imp.svc.CreateClass(ctx, nc); err != nil {
			if vErr, ok := errors.Cause(err).(*core.ValidationError); ok && vErr.Err == ErrClassExists {
				imp.logger.Warn("class already exists", map[string]interface{}{"class": name, "term": term})
				res.Skipped++
				continue
			}
			imp.logger.Error("creating class", err, map[string]interface{}{"class": name})
			res.Failed++
			continue
		}
		res.Created++

		if count > 0 {
			imp.logger.Info("class has students to assign manually", map[string]interface{}{"class": name, "students": count})
		}
	}
	return res, nil
}

func mapHeaders(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		cols[cleanCell(h)] = i
	}
	var missing []string
	for _, h := range requiredHeaders {
		if _, ok := cols[h]; !ok {
			missing = append(missing, h)
		}
	}
	if len(missing) > 0 {
		return nil, errors.Wrap(ErrMissingHeaders, strings.Join(missing, ", "))
	}
	return cols, nil
}

// cleanCell normalizes non-breaking spaces, repeated whitespace and
// typographic dashes in a raw CSV cell.
func cleanCell(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = wsRegex.ReplaceAllString(s, " ")
	s = strings.NewReplacer("–", "-", "—", "-").Replace(s)
	return strings.TrimSpace(s)
}

var validGrades = []string{"K", "1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11", "12"}

func gradeIndex(g string) int {
	for i, vg := range validGrades {
		if g == vg {
			return i
		}
	}
	return -1
}

// gradeToStr converts a raw grade cell fragment ("K", "1st", "2nd") to its
// canonical grade ("K", "1", "2"). Returns "" when invalid.
func gradeToStr(g string) string {
	g = strings.ToLower(strings.TrimSpace(g))
	if g == "k" {
		return "K"
	}
	if num := numRegex.FindString(g); num != "" && gradeIndex(num) >= 0 {
		return num
	}
	return ""
}

// normalizeGradeLevels expands a grade cell to canonical grades:
// "1st, 2nd" -> [1 2]; "K-12" -> [K 1 ... 12].
func normalizeGradeLevels(grade string) []string {
	grade = strings.ReplaceAll(cleanCell(grade), `"`, "")
	if grade == "" {
		return nil
	}

	if strings.Contains(grade, "-") {
		parts := strings.SplitN(grade, "-", 2)
		start, end := gradeToStr(parts[0]), gradeToStr(parts[1])
		if start == "" || end == "" {
			return nil
		}
		startIdx, endIdx := gradeIndex(start), gradeIndex(end)
		if startIdx > endIdx {
			return []string{start}
		}
		return validGrades[startIdx : endIdx+1]
	}

	if strings.Contains(grade, ",") {
		set := make(map[string]bool)
		for _, g := range strings.Split(grade, ",") {
			if gs := gradeToStr(g); gs != "" {
				set[gs] = true
			}
		}
		if len(set) == 0 {
			return nil
		}
		grades := make([]string, 0, len(set))
		for _, vg := range validGrades {
			if set[vg] {
				grades = append(grades, vg)
			}
		}
		return grades
	}

	if gs := gradeToStr(grade); gs != "" {
		return []string{gs}
	}
	return nil
}

func normalizeTerm(term string) Term {
	switch cleanCell(term) {
	case "S1,S2", "S1, S2":
		return TermBoth
	case "S1":
		return TermSemester1
	case "S2":
		return TermSemester2
	}
	return Term(term)
}

func (t Term) isValid() bool {
	for _, vt := range AllTerms {
		if t == vt {
			return true
		}
	}
	return false
}

// parseSchedule extracts weekdays and period blocks from a schedule cell.
// The export encodes the weekday as leading dashes: "B1" is Monday,
// "- B1" Tuesday, "-- B1" Wednesday, "--- B1" Thursday.
func parseSchedule(schedule string) (days, blocks []int) {
	schedule = cleanCell(schedule)
	switch schedule {
	case "", "* not scheduled", "MM", "- MM":
		return nil, nil
	}

	daySet := make(map[int]bool)
	blockSet := make(map[int]bool)
	for _, entry := range strings.Split(schedule, ",") {
		entry = strings.TrimSpace(entry)

		prefix := entry
		if i := strings.IndexByte(entry, 'B'); i >= 0 {
			prefix = entry[:i]
		}
		if m := blockRegex.FindStringSubmatch(entry); m != nil {
			day := strings.Count(prefix, "-") + 1
			if day <= 4 {
				daySet[day] = true
			}
			block, _ := strconv.Atoi(m[1])
			blockSet[block] = true
		}
	}

	for d := range daySet {
		days = append(days, d)
	}
	sort.Ints(days)
	for b := range blockSet {
		blocks = append(blocks, b)
	}
	sort.Ints(blocks)
	return days, blocks
}

// parseTeacherName parses "Last, First" or "Last, First (Nickname)".
func parseTeacherName(teacher string) (firstName, lastName string, ok bool) {
	teacher = cleanCell(teacher)
	if teacher == "" {
		return "", "", false
	}
	m := teacherRegex.FindStringSubmatch(teacher)
	if m == nil {
		return "", "", false
	}
	return strings.TrimSpace(m[2]), strings.TrimSpace(m[1]), true
}

// parseCountMax parses "10 / 15" into the current student count and the
// class's maximum size. "* no students" yields an unbounded empty class.
func parseCountMax(countMax string) (count, maxSize int, ok bool) {
	countMax = cleanCell(countMax)
	if countMax == "* no students" {
		return 0, 0, true
	}
	m := countRegex.FindStringSubmatch(countMax)
	if m == nil {
		return 0, 0, false
	}
	count, _ = strconv.Atoi(m[1])
	maxSize, _ = strconv.Atoi(m[2])
	return count, maxSize, true
}
