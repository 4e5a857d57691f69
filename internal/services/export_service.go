package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/SAP-F-2025/story-survey-service/internal/models"
	"github.com/SAP-F-2025/story-survey-service/internal/repositories"
	"github.com/xuri/excelize/v2"
)

const exportPageSize = 500

var sourceSurveyTypes = map[string]string{
	"dodell":       "expert",
	"ullman":       "expert",
	"kosinski":     "expert",
	"false_belief": "ours",
	"true_belief":  "ours",
	"social_iqa":   "social_iqa",
}

var (
	likertHeaders = []string{
		"data_source", "split", "survey_type", "item_id", "prolific_id",
		"age", "ethnicity", "gender", "race",
		"item_story", "item_question", "item_answers",
		"understandability", "coherent_q_a", "unambiguous", "average_rating",
	}
	choiceHeaders = []string{
		"data_source", "split", "survey_type", "item_id", "prolific_id",
		"age", "ethnicity", "gender", "race",
		"item_story", "item_question", "item_answers",
		"item_true_answers", "response", "correct", "true_false",
	}
)

type exportService struct {
	submissions repositories.SubmissionRepository
	logger      *slog.Logger
}

func NewExportService(submissions repositories.SubmissionRepository, logger *slog.Logger) ExportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &exportService{submissions: submissions, logger: logger}
}

// ExportStudy writes one row per participant and trial. Likert and choice
// submissions land on separate sheets since their columns differ.
func (s *exportService) ExportStudy(ctx context.Context, studyID string) ([]byte, error) {
	records, err := s.listAll(ctx, studyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	var likertRows, choiceRows [][]interface{}
	for _, record := range records {
		var payload models.SubmissionPayload
		if err := json.Unmarshal(record.Payload, &payload); err != nil {
			s.logger.WarnContext(ctx, "Skipping undecodable submission", "session_id", record.SessionID, "error", err)
			continue
		}
		if record.Variant == models.VariantMCQ {
			choiceRows = append(choiceRows, ChoiceRows(&payload)...)
		} else {
			likertRows = append(likertRows, LikertRows(&payload)...)
		}
	}

	sortRows(likertRows)
	sortRows(choiceRows)

	f := excelize.NewFile()
	defer f.Close()

	if err := writeSheet(f, "Ratings", likertHeaders, likertRows); err != nil {
		return nil, err
	}
	if err := writeSheet(f, "Responses", choiceHeaders, choiceRows); err != nil {
		return nil, err
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}
	active := "Ratings"
	if len(likertRows) == 0 && len(choiceRows) > 0 {
		active = "Responses"
	}
	if idx, err := f.GetSheetIndex(active); err == nil {
		f.SetActiveSheet(idx)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	s.logger.InfoContext(ctx, "Exported study results",
		"study_id", studyID,
		"submissions", len(records),
		"rating_rows", len(likertRows),
		"response_rows", len(choiceRows))
	return buf.Bytes(), nil
}

func (s *exportService) listAll(ctx context.Context, studyID string) ([]*models.SubmissionRecord, error) {
	var all []*models.SubmissionRecord
	for offset := 0; ; offset += exportPageSize {
		page, total, err := s.submissions.List(ctx, repositories.SubmissionFilters{
			StudyID:   studyID,
			SortBy:    "submitted_at",
			SortOrder: "asc",
			Limit:     exportPageSize,
			Offset:    offset,
		})
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) == 0 || int64(len(all)) >= total {
			return all, nil
		}
	}
}

// SurveyType groups a data source into the analysis buckets.
func SurveyType(dataSource string) string {
	if t, ok := sourceSurveyTypes[dataSource]; ok {
		return t
	}
	return "unknown"
}

// IsCorrectChoice scores a choice response. The two attention checks have a
// fixed key regardless of their labels.
func IsCorrectChoice(itemID string, response int, trueLabels []int) bool {
	switch itemID {
	case "attention_check_1":
		return response == 0
	case "attention_check_2":
		return response == 1
	}
	return response >= 0 && response < len(trueLabels) && trueLabels[response] == 1
}

// LikertRows flattens a rating submission into long format.
func LikertRows(p *models.SubmissionPayload) [][]interface{} {
	rows := make([][]interface{}, 0, len(p.TrialPages))
	for _, key := range trialKeys(p.TrialPages) {
		rec := p.TrialPages[key]

		keys := make([]string, 0, len(rec.LikertResponses))
		for k := range rec.LikertResponses {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		ratings := make([]interface{}, 3)
		sum, count := 0, 0
		for i, k := range keys {
			n, err := strconv.Atoi(rec.LikertResponses[k])
			if err != nil {
				continue
			}
			if i < len(ratings) {
				ratings[i] = n
			}
			sum += n
			count++
		}
		var average interface{}
		if count > 0 {
			average = float64(sum) / float64(count)
		}

		row := append(commonColumns(p, rec, SurveyType(rec.DataSource)), ratings...)
		rows = append(rows, append(row, average))
	}
	return rows
}

// ChoiceRows flattens a multiple choice submission into long format.
func ChoiceRows(p *models.SubmissionPayload) [][]interface{} {
	rows := make([][]interface{}, 0, len(p.TrialPages))
	for _, key := range trialKeys(p.TrialPages) {
		rec := p.TrialPages[key]

		var response interface{}
		correct := 0
		if rec.SelectedAnswerIdx != nil {
			if idx, err := strconv.Atoi(*rec.SelectedAnswerIdx); err == nil {
				response = idx
				if IsCorrectChoice(rec.ID, idx, rec.TrueLabels) {
					correct = 1
				}
			}
		}

		var trueFalse interface{}
		switch rec.DataSource[strings.LastIndex(rec.DataSource, "_")+1:] {
		case "true":
			trueFalse = true
		case "false":
			trueFalse = false
		}

		row := commonColumns(p, rec, rec.DataSource)
		row = append(row, joinInts(rec.TrueLabels), response, correct, trueFalse)
		rows = append(rows, row)
	}
	return rows
}

func commonColumns(p *models.SubmissionPayload, rec models.TrialRecord, surveyType string) []interface{} {
	return []interface{}{
		rec.DataSource,
		p.Condition,
		surveyType,
		rec.ID,
		p.ProlificPID,
		p.ExitSurvey.Age,
		p.ExitSurvey.Ethnicity,
		p.ExitSurvey.Gender,
		p.ExitSurvey.Race,
		rec.Story,
		rec.Question,
		strings.Join(rec.Answers, " | "),
	}
}

// trialKeys orders trial1..trialN numerically.
func trialKeys(pages map[string]models.TrialRecord) []string {
	keys := make([]string, 0, len(pages))
	for k := range pages {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, _ := strconv.Atoi(strings.TrimPrefix(keys[i], "trial"))
		b, _ := strconv.Atoi(strings.TrimPrefix(keys[j], "trial"))
		return a < b
	})
	return keys
}

// sortRows orders by survey_type then item_id, keeping submission order otherwise.
func sortRows(rows [][]interface{}) {
	sort.SliceStable(rows, func(i, j int) bool {
		ti, tj := fmt.Sprint(rows[i][2]), fmt.Sprint(rows[j][2])
		if ti != tj {
			return ti < tj
		}
		return fmt.Sprint(rows[i][3]) < fmt.Sprint(rows[j][3])
	})
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func writeSheet(f *excelize.File, name string, headers []string, rows [][]interface{}) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		f.SetCellValue(name, cell, header)
	}

	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r+2, err)
		}
	}
	return nil
}
