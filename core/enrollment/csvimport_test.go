package enrollment

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/trezcool/shule/core"
)

func TestNormalizeGradeLevels(t *testing.T) {
	tests := []struct {
		grade string
		want  []string
	}{
		{grade: "", want: nil},
		{grade: "K", want: []string{"K"}},
		{grade: "1st", want: []string{"1"}},
		{grade: "1st, 2nd", want: []string{"1", "2"}},
		{grade: "2nd, 1st, 2nd", want: []string{"1", "2"}},
		{grade: "K-12", want: []string{"K", "1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11", "12"}},
		{grade: "3rd-5th", want: []string{"3", "4", "5"}},
		{grade: "9th–12th", want: []string{"9", "10", "11", "12"}}, // en dash
		{grade: "5th-3rd", want: []string{"5"}},
		{grade: "13th", want: nil},
		{grade: "banana", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.grade, func(t *testing.T) {
			if got := normalizeGradeLevels(tt.grade); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("normalizeGradeLevels(%q) = %v, want %v", tt.grade, got, tt.want)
			}
		})
	}
}

func TestNormalizeTerm(t *testing.T) {
	tests := []struct {
		term string
		want Term
	}{
		{term: "S1", want: TermSemester1},
		{term: "S2", want: TermSemester2},
		{term: "S1,S2", want: TermBoth},
		{term: "S1, S2", want: TermBoth},
		{term: "Semester 1", want: TermSemester1},
		{term: "S3", want: Term("S3")},
	}
	for _, tt := range tests {
		if got := normalizeTerm(tt.term); got != tt.want {
			t.Errorf("normalizeTerm(%q) = %v, want %v", tt.term, got, tt.want)
		}
	}
}

func TestParseSchedule(t *testing.T) {
	tests := []struct {
		schedule   string
		wantDays   []int
		wantBlocks []int
	}{
		{schedule: ""},
		{schedule: "* not scheduled"},
		{schedule: "MM"},
		{schedule: "- MM"},
		{schedule: "B1", wantDays: []int{1}, wantBlocks: []int{1}},
		{schedule: "- B1", wantDays: []int{2}, wantBlocks: []int{1}},
		{schedule: "-- B3", wantDays: []int{3}, wantBlocks: []int{3}},
		{schedule: "--- B4", wantDays: []int{4}, wantBlocks: []int{4}},
		{schedule: "B1, B2", wantDays: []int{1}, wantBlocks: []int{1, 2}},
		{schedule: "- B5, B6", wantDays: []int{1, 2}, wantBlocks: []int{5, 6}},
		{schedule: "B1, - B1", wantDays: []int{1, 2}, wantBlocks: []int{1}},
	}
	for _, tt := range tests {
		t.Run(tt.schedule, func(t *testing.T) {
			days, blocks := parseSchedule(tt.schedule)
			if !reflect.DeepEqual(days, tt.wantDays) {
				t.Errorf("days = %v, want %v", days, tt.wantDays)
			}
			if !reflect.DeepEqual(blocks, tt.wantBlocks) {
				t.Errorf("blocks = %v, want %v", blocks, tt.wantBlocks)
			}
		})
	}
}

func TestParseTeacherName(t *testing.T) {
	tests := []struct {
		teacher   string
		wantFirst string
		wantLast  string
		wantOk    bool
	}{
		{teacher: ""},
		{teacher: "no comma here"},
		{teacher: "Pfeil, Teandra", wantFirst: "Teandra", wantLast: "Pfeil", wantOk: true},
		{teacher: "Smith, John (Jack)", wantFirst: "John", wantLast: "Smith", wantOk: true},
		{teacher: "  Doe ,  Jane ", wantFirst: "Jane", wantLast: "Doe", wantOk: true},
	}
	for _, tt := range tests {
		first, last, ok := parseTeacherName(tt.teacher)
		if first != tt.wantFirst || last != tt.wantLast || ok != tt.wantOk {
			t.Errorf("parseTeacherName(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tt.teacher, first, last, ok, tt.wantFirst, tt.wantLast, tt.wantOk)
		}
	}
}

func TestParseCountMax(t *testing.T) {
	tests := []struct {
		countMax  string
		wantCount int
		wantMax   int
		wantOk    bool
	}{
		{countMax: "* no students", wantOk: true},
		{countMax: "10 / 15", wantCount: 10, wantMax: 15, wantOk: true},
		{countMax: "3/12", wantCount: 3, wantMax: 12, wantOk: true},
		{countMax: "n/a"},
		{countMax: ""},
	}
	for _, tt := range tests {
		count, max, ok := parseCountMax(tt.countMax)
		if count != tt.wantCount || max != tt.wantMax || ok != tt.wantOk {
			t.Errorf("parseCountMax(%q) = (%d, %d, %v), want (%d, %d, %v)",
				tt.countMax, count, max, ok, tt.wantCount, tt.wantMax, tt.wantOk)
		}
	}
}

// fakeRepo implements just enough of Repository for the importer.
type fakeRepo struct {
	Repository
	classes []Class
}

func (r *fakeRepo) CheckClassUniqueness(_ context.Context, name string, term Term, _ []Class, _ ...core.DBExecutor) error {
	for _, cls := range r.classes {
		if cls.Name == name && cls.Term == term {
			return ErrClassExists
		}
	}
	return nil
}

func (r *fakeRepo) CreateClass(_ context.Context, cls Class, _ ...core.DBExecutor) (Class, error) {
	r.classes = append(r.classes, cls)
	return cls, nil
}

func TestImporterImport(t *testing.T) {
	csvData := "\ufeffClass Name,Grade Level,Term,Schedule,Teacher,Student Count/Max\n" +
		"Robotics [lab],\"3rd-5th\",S1,\"- B1, B2\",\"Pfeil, Teandra\",10 / 15\n" +
		"Robotics,3rd,S1,B1,,* no students\n" + // duplicate (name, term)
		"Choir,K-12,\"S1,S2\",-- B3,\"Smith, John (Jack)\",5 / 20\n" +
		"Drama,6th,S3,B2,,2 / 10\n" // invalid term

	repo := &fakeRepo{}
	svc := NewService(nil, repo)
	lookup := func(_ context.Context, first, last string) (string, error) {
		if first == "Teandra" && last == "Pfeil" {
			return "6ba7b810-9dad-41d1-80b4-00c04fd430c8", nil
		}
		return "", nil
	}
	imp := NewImporter(svc, lookup, nopLogger{})

	res, err := imp.Import(context.Background(), strings.NewReader(csvData))
	if err != nil {
		t.Fatal(err)
	}
	if res.Created != 2 || res.Skipped != 2 || res.Failed != 0 {
		t.Fatalf("ImportResult = %+v, want {Created:2 Skipped:2 Failed:0}", res)
	}

	robotics := repo.classes[0]
	if robotics.Name != "Robotics" {
		t.Errorf("Name = %q, want %q (bracket tag stripped)", robotics.Name, "Robotics")
	}
	if !reflect.DeepEqual(robotics.GradeLevels, []string{"3", "4", "5"}) {
		t.Errorf("GradeLevels = %v, want [3 4 5]", robotics.GradeLevels)
	}
	if robotics.Term != TermSemester1 {
		t.Errorf("Term = %v, want %v", robotics.Term, TermSemester1)
	}
	if !reflect.DeepEqual(robotics.Days, []int{1, 2}) {
		t.Errorf("Days = %v, want [1 2]", robotics.Days)
	}
	if !reflect.DeepEqual(robotics.ScheduleBlocks, []int{1, 2}) {
		t.Errorf("ScheduleBlocks = %v, want [1 2]", robotics.ScheduleBlocks)
	}
	if robotics.MaxSize != 15 {
		t.Errorf("MaxSize = %d, want 15", robotics.MaxSize)
	}
	if robotics.TeacherID == "" {
		t.Error("TeacherID not resolved")
	}

	choir := repo.classes[1]
	if choir.Term != TermBoth {
		t.Errorf("Term = %v, want %v", choir.Term, TermBoth)
	}
	if choir.TeacherID != "" {
		t.Errorf("TeacherID = %q, want unowned class for unknown teacher", choir.TeacherID)
	}
	if len(choir.GradeLevels) != 13 {
		t.Errorf("GradeLevels = %v, want all 13 grades", choir.GradeLevels)
	}
}
