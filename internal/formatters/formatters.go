package formatters

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"resumescreen/internal/extract"
	"resumescreen/internal/types"
)

// Output formats
const (
	FormatJSON     = "json"
	FormatText     = "text"
	FormatMarkdown = "markdown"
)

// Data type keys
const (
	TypeAny        = "any"
	TypeAnalysis   = "ResumeAnalysis"
	TypeMatchScore = "MatchScore"
	TypeRanking    = "Ranking"
	TypeBatch      = "BatchResult"
	TypeQuestions  = "InterviewQuestionsOutput"
	TypeComparison = "ComparisonOutput"
	TypeATS        = "ATSOutput"
	TypeEntities   = "Entities"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter(FormatJSON, TypeAny, &JSONFormatter{})

	reports := map[string]renderFunc{
		TypeAnalysis:   renderAnalysis,
		TypeMatchScore: renderMatchScore,
		TypeRanking:    renderRanking,
		TypeBatch:      renderBatch,
		TypeQuestions:  renderQuestions,
		TypeComparison: renderComparison,
		TypeATS:        renderATS,
		TypeEntities:   renderEntities,
	}
	for dataType, render := range reports {
		registry.RegisterFormatter(FormatText, dataType, &ReportFormatter{dataType: dataType, markdown: false, render: render})
		registry.RegisterFormatter(FormatMarkdown, dataType, &ReportFormatter{dataType: dataType, markdown: true, render: render})
	}

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		if formatter, exists := formatters[TypeAny]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats, sorted
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	slices.Sort(formats)
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.ResumeAnalysis, *types.ResumeAnalysis:
		return TypeAnalysis
	case types.MatchScore, *types.MatchScore:
		return TypeMatchScore
	case []types.RankedCandidate:
		return TypeRanking
	case types.BatchResult, *types.BatchResult:
		return TypeBatch
	case types.InterviewQuestionsOutput, *types.InterviewQuestionsOutput:
		return TypeQuestions
	case types.ComparisonOutput, *types.ComparisonOutput:
		return TypeComparison
	case types.ATSOutput, *types.ATSOutput:
		return TypeATS
	case extract.Entities, *extract.Entities:
		return TypeEntities
	default:
		return TypeAny
	}
}

// deref returns the value behind a pointer to T, or the T itself
func deref[T any](data any) (T, error) {
	switch v := data.(type) {
	case T:
		return v, nil
	case *T:
		if v != nil {
			return *v, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("expected %T, got %T", zero, data)
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return TypeAny
}

type renderFunc func(data any, w *reportWriter) error

// ReportFormatter renders one data type as plain text or markdown
type ReportFormatter struct {
	dataType string
	markdown bool
	render   renderFunc
}

func (rf *ReportFormatter) Format(data any) (string, error) {
	w := &reportWriter{markdown: rf.markdown}
	if err := rf.render(data, w); err != nil {
		return "", err
	}
	return strings.TrimRight(w.String(), "\n") + "\n", nil
}

func (rf *ReportFormatter) SupportedType() string {
	return rf.dataType
}

// reportWriter writes headings, fields and lists in either style
type reportWriter struct {
	strings.Builder
	markdown bool
}

func (w *reportWriter) title(text string) {
	if w.markdown {
		fmt.Fprintf(w, "# %s\n\n", text)
		return
	}
	fmt.Fprintf(w, "=== %s ===\n\n", strings.ToUpper(text))
}

func (w *reportWriter) section(text string) {
	if w.markdown {
		fmt.Fprintf(w, "## %s\n\n", text)
		return
	}
	fmt.Fprintf(w, "--- %s ---\n", text)
}

func (w *reportWriter) field(label string, value any) {
	if w.markdown {
		fmt.Fprintf(w, "**%s:** %v  \n", label, value)
		return
	}
	fmt.Fprintf(w, "%s: %v\n", label, value)
}

func (w *reportWriter) list(items []string) {
	for _, item := range items {
		fmt.Fprintf(w, "- %s\n", item)
	}
}

func (w *reportWriter) blank() {
	w.WriteString("\n")
}

func (w *reportWriter) table(headers []string, rows [][]string) {
	if !w.markdown {
		for _, row := range rows {
			w.WriteString(strings.Join(row, "  |  "))
			w.WriteString("\n")
		}
		return
	}
	fmt.Fprintf(w, "| %s |\n", strings.Join(headers, " | "))
	fmt.Fprintf(w, "|%s\n", strings.Repeat(" --- |", len(headers)))
	for _, row := range rows {
		fmt.Fprintf(w, "| %s |\n", strings.Join(row, " | "))
	}
}

func orNone(items []string) []string {
	if len(items) == 0 {
		return []string{"None"}
	}
	return items
}

func issueLines(issues []types.Issue) []string {
	lines := make([]string, len(issues))
	for i, issue := range issues {
		lines[i] = fmt.Sprintf("[%s] %s", issue.Severity, issue.Message)
	}
	return lines
}

func renderAnalysis(data any, w *reportWriter) error {
	a, err := deref[types.ResumeAnalysis](data)
	if err != nil {
		return err
	}

	w.title("Resume Analysis")
	w.field("Candidate", valueOr(a.Contact.Name, "Unknown"))
	w.field("Email", valueOr(a.Contact.Email, "Not found"))
	w.field("Phone", valueOr(a.Contact.Phone, "Not found"))
	if a.Contact.LinkedIn != "" {
		w.field("LinkedIn", a.Contact.LinkedIn)
	}
	if a.Contact.GitHub != "" {
		w.field("GitHub", a.Contact.GitHub)
	}
	w.field("Analysis", analysisSource(a.AIPowered))
	w.field("Word count", a.WordCount)
	w.blank()

	if a.Summary != "" {
		w.section("Summary")
		w.WriteString(a.Summary)
		w.blank()
		w.blank()
	}

	w.section("Skills")
	w.field("Total", a.Skills.TotalSkills)
	for _, category := range types.SkillCategories {
		if list := a.Skills.Categorized[category]; len(list) > 0 {
			w.field(category, strings.Join(list, ", "))
		}
	}
	w.blank()

	w.section("Experience")
	w.field("Years", fmt.Sprintf("%.1f", a.Experience.TotalYears))
	w.field("Level", a.Experience.ExperienceLevel)
	if len(a.Experience.JobTitles) > 0 {
		w.field("Titles", strings.Join(a.Experience.JobTitles, ", "))
	}
	w.blank()

	w.section("Education")
	w.field("Highest degree", a.Education.HighestDegree)
	w.field("Score", fmt.Sprintf("%d/100", a.Education.Score))
	if len(a.Education.Universities) > 0 {
		w.field("Institutions", strings.Join(a.Education.Universities, ", "))
	}
	w.blank()

	w.section("Sentiment")
	w.field("Tone", a.Sentiment.Tone)
	w.field("Professionalism", fmt.Sprintf("%d/100", a.Sentiment.ProfessionalismScore))
	w.blank()

	if len(a.Strengths) > 0 {
		w.section("Strengths")
		w.list(a.Strengths)
		w.blank()
	}
	if len(a.Weaknesses) > 0 {
		w.section("Weaknesses")
		w.list(a.Weaknesses)
		w.blank()
	}

	w.section("Red Flags")
	w.list(orNone(issueLines(a.RedFlags)))
	w.blank()
	w.section("Warnings")
	w.list(orNone(issueLines(a.Warnings)))
	w.blank()
	w.section("Suggestions")
	w.list(orNone(issueLines(a.Suggestions)))
	w.blank()

	if a.MatchScore != nil {
		writeMatchScore("Match Score", *a.MatchScore, w)
	}
	if a.EngineScore != nil {
		if a.MatchScore != nil {
			w.blank()
		}
		writeMatchScore("Weighted Score", *a.EngineScore, w)
	}
	return nil
}

func renderMatchScore(data any, w *reportWriter) error {
	s, err := deref[types.MatchScore](data)
	if err != nil {
		return err
	}
	writeMatchScore("Match Score", s, w)
	return nil
}

func writeMatchScore(title string, s types.MatchScore, w *reportWriter) {
	w.title(title)
	w.field("Overall", fmt.Sprintf("%d/100", s.OverallScore))
	w.field("Recommendation", s.Recommendation.Status)
	w.field("Action", s.Recommendation.Action)
	w.field("Skill match", fmt.Sprintf("%d%%", s.MatchDetails.SkillMatchPercentage))
	w.field("Experience match", yesNo(s.MatchDetails.ExperienceMatch))
	w.field("Education match", yesNo(s.MatchDetails.EducationMatch))
	w.blank()

	if s.Breakdown != nil {
		w.section("Breakdown")
		w.field("Skills", fmt.Sprintf("%.0f", s.Breakdown.Skills))
		w.field("Experience", fmt.Sprintf("%.0f", s.Breakdown.Experience))
		w.field("Education", fmt.Sprintf("%.0f", s.Breakdown.Education))
		w.field("Professionalism", fmt.Sprintf("%.0f", s.Breakdown.Professionalism))
		w.field("Completeness", fmt.Sprintf("%.0f", s.Breakdown.Completeness))
		w.blank()
	}

	w.section("Matched Skills")
	w.list(orNone(s.MatchDetails.SkillsMatch))
	w.blank()
	w.section("Missing Skills")
	w.list(orNone(s.MatchDetails.MissingSkills))
}

func renderRanking(data any, w *reportWriter) error {
	ranked, ok := data.([]types.RankedCandidate)
	if !ok {
		return fmt.Errorf("expected []types.RankedCandidate, got %T", data)
	}

	w.title("Candidate Ranking")
	if len(ranked) == 0 {
		w.WriteString("No candidates\n")
		return nil
	}
	w.table([]string{"Rank", "Candidate", "Score", "Recommendation", "Analysis"}, rankingRows(ranked))
	return nil
}

func rankingRows(ranked []types.RankedCandidate) [][]string {
	rows := make([][]string, len(ranked))
	for i, c := range ranked {
		name := valueOr(c.Name, valueOr(c.FileName, c.CandidateID))
		rows[i] = []string{
			fmt.Sprintf("#%d", c.Rank),
			name,
			fmt.Sprintf("%d", c.Score.OverallScore),
			c.Score.Recommendation.Status,
			analysisSource(c.AIPowered),
		}
	}
	return rows
}

func renderBatch(data any, w *reportWriter) error {
	b, err := deref[types.BatchResult](data)
	if err != nil {
		return err
	}

	w.title("Batch Results")
	w.field("Batch", b.BatchID)
	if b.JobID != "" {
		w.field("Job", b.JobID)
	}
	w.field("Processed", fmt.Sprintf("%d of %d (%d failed)", b.Succeeded, b.Total, b.Failed))
	w.blank()

	w.section("Files")
	lines := make([]string, len(b.Items))
	for i, item := range b.Items {
		switch {
		case item.Error != "":
			lines[i] = fmt.Sprintf("%s: %s (%s)", item.FileName, item.Status, item.Error)
		case item.MatchScore != nil:
			lines[i] = fmt.Sprintf("%s: %s, score %d", item.FileName, item.Status, item.MatchScore.OverallScore)
		default:
			lines[i] = fmt.Sprintf("%s: %s", item.FileName, item.Status)
		}
	}
	w.list(orNone(lines))

	if len(b.Ranking) > 0 {
		w.blank()
		w.section("Ranking")
		w.table([]string{"Rank", "Candidate", "Score", "Recommendation", "Analysis"}, rankingRows(b.Ranking))
	}
	return nil
}

func renderQuestions(data any, w *reportWriter) error {
	q, err := deref[types.InterviewQuestionsOutput](data)
	if err != nil {
		return err
	}

	w.title("Interview Questions")
	if q.JobTitle != "" {
		w.field("Position", q.JobTitle)
		w.blank()
	}
	for i, question := range q.Questions {
		fmt.Fprintf(w, "%d. [%s] %s\n", i+1, question.Category, question.Question)
		if question.Purpose != "" {
			fmt.Fprintf(w, "   Purpose: %s\n", question.Purpose)
		}
	}
	return nil
}

func renderComparison(data any, w *reportWriter) error {
	c, err := deref[types.ComparisonOutput](data)
	if err != nil {
		return err
	}

	w.title("Candidate Comparison")
	for _, entry := range c.Rankings {
		w.section(fmt.Sprintf("#%d %s (%d/100)", entry.Rank, entry.CandidateID, entry.Score))
		if entry.Summary != "" {
			w.WriteString(entry.Summary)
			w.blank()
		}
		w.field("Strengths", strings.Join(orNone(entry.Strengths), "; "))
		w.field("Weaknesses", strings.Join(orNone(entry.Weaknesses), "; "))
		w.blank()
	}
	w.section("Recommendation")
	w.WriteString(c.Recommendation)
	w.blank()
	return nil
}

func renderATS(data any, w *reportWriter) error {
	a, err := deref[types.ATSOutput](data)
	if err != nil {
		return err
	}

	w.title("ATS Review")
	w.field("Score", fmt.Sprintf("%d/100", a.Score))
	w.blank()
	w.section("Keywords Present")
	w.list(orNone(a.Keywords.Present))
	w.blank()
	w.section("Keywords Missing")
	w.list(orNone(a.Keywords.Missing))
	w.blank()
	w.section("Formatting Issues")
	w.list(orNone(a.FormattingIssues))
	w.blank()
	w.section("Suggestions")
	w.list(orNone(a.Suggestions))
	return nil
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func analysisSource(aiPowered bool) string {
	if aiPowered {
		return "AI"
	}
	return "Rule-based"
}

// GlobalRegistry is the shared formatter registry
var GlobalRegistry = NewFormatterRegistry()

func renderEntities(data any, w *reportWriter) error {
	e, err := deref[extract.Entities](data)
	if err != nil {
		return err
	}

	w.title("Extracted Entities")
	sections := []struct {
		name  string
		items []string
	}{
		{"Names", e.Names},
		{"Emails", e.Emails},
		{"Phones", e.Phones},
		{"Links", slices.Concat(e.URLs.LinkedIn, e.URLs.GitHub, e.URLs.Portfolio, e.URLs.Other)},
		{"Dates", e.Dates},
		{"Locations", e.Locations},
		{"Organizations", e.Organizations},
		{"Money", e.Money},
		{"Certifications", e.Certifications},
		{"Achievements", e.Achievements},
		{"Languages", e.Languages},
	}
	for _, sec := range sections {
		w.section(sec.name)
		w.list(orNone(sec.items))
		w.blank()
	}

	w.section("Keywords")
	keywords := make([]string, len(e.Keywords))
	for i, k := range e.Keywords {
		keywords[i] = fmt.Sprintf("%s (%d)", k.Word, k.Count)
	}
	w.list(orNone(keywords))
	return nil
}
