package services

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/darab-cement/cms-service/internal/models"
)

// Matrix columns of the supplier evaluation table, in display order
var supplierMatrixColumns = []models.MatrixItem{
	{Value: "importance", Label: "اهمیت موضوع"},
	{Value: "importanceOfTopic", Label: "میزان اهمیت موضوع"},
	{Value: "companyPerformance", Label: "عملکرد شرکت در موضوع"},
	{Value: "companyStatus", Label: "وضعیت شرکت در مقایسه با رقبا"},
}

// CreateSupplierPoll builds the supplier satisfaction questionnaire: group selector, evaluation matrix, free text
func (s *pollService) CreateSupplierPoll(ctx context.Context, req *models.SupplierPollRequest, actor *models.User) (*models.Poll, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	poll := supplierPoll(req)
	if actor != nil {
		poll.CreatedByID = &actor.ID
	}

	if err := s.createPoll(ctx, poll); err != nil {
		return nil, err
	}

	s.logger.Info("Supplier poll created", "poll_id", poll.ID, "rows", len(req.TableQuestions))
	return s.getPoll(ctx, poll.ID)
}

func supplierPoll(req *models.SupplierPollRequest) *models.Poll {
	groupOptions := make([]models.QuestionOption, 0, len(req.SupplierGroups))
	for _, g := range req.SupplierGroups {
		groupOptions = append(groupOptions, models.QuestionOption{Value: g.ID, Label: g.Label})
	}

	rows := make([]models.MatrixItem, 0, len(req.TableQuestions))
	for _, q := range req.TableQuestions {
		rows = append(rows, models.MatrixItem{Value: q.ID, Label: q.Title})
	}

	cols := req.QuestionColumns
	var cellOptions []models.QuestionOption
	for _, group := range []struct {
		prefix  string
		columns []models.QuestionColumn
	}{
		{"importance", cols.Importance},
		{"importanceOfTopic", cols.ImportanceOfTopic},
		{"companyPerformance", cols.CompanyPerformance},
		{"companyStatus", cols.CompanyStatus},
	} {
		for _, c := range group.columns {
			cellOptions = append(cellOptions, models.QuestionOption{Value: group.prefix + "_" + c.ID, Label: c.Label})
		}
	}

	questions := []models.PollQuestionRequest{
		{
			Question: "لطفاً نوع همکاری خود با شرکت سیمان داراب را مشخص کنید:",
			Type:     models.QuestionSingleChoice,
			Required: ptr(true),
			Order:    ptr(0),
			Options:  groupOptions,
		},
		{
			Question:    "ارزیابی عملکرد شرکت سیمان داراب",
			Description: ptr("لطفاً هر یک از موارد زیر را بر اساس تجربه خود ارزیابی کنید:"),
			Type:        models.QuestionMatrix,
			Required:    ptr(true),
			Order:       ptr(1),
			MatrixConfig: &models.MatrixConfig{
				Rows:    rows,
				Columns: supplierMatrixColumns,
				Options: cellOptions,
			},
		},
		{
			Question:    "۱۳- نحوه ارتباط شما با مدیران شرکت را چگونه ارزیابی می نمایید ؟",
			Type:        models.QuestionTextarea,
			Required:    ptr(false),
			Order:       ptr(2),
			Placeholder: "لطفاً نظرات خود را بنویسید...",
		},
		{
			Question:    "۱۴- نقطه نظرات و پیشنهادات شما در راستای بهبود عملکرد روابط تأمین کنندگان چیست ؟",
			Type:        models.QuestionTextarea,
			Required:    ptr(false),
			Order:       ptr(3),
			Placeholder: "لطفاً پیشنهادات خود را بنویسید...",
		},
		{
			Question:    "۱۵- در صورت، شما کالا یا خدماتی دیگری جهت عرضه ندارید که در راستای تولید محصولات شرکت مفید واقع شود ؟",
			Type:        models.QuestionTextarea,
			Required:    ptr(false),
			Order:       ptr(4),
			Placeholder: "لطفاً توضیح دهید...",
		},
	}

	return &models.Poll{
		Title:                    req.Title,
		Description:              req.Description,
		Type:                     models.PollTypeSatisfaction,
		Status:                   models.PollStatusActive,
		RequiresAuth:             false,
		AllowAnonymous:           true,
		AllowMultipleSubmissions: false,
		ShowResults:              false,
		Metadata: datatypes.JSONMap{
			"pollType":        models.SupplierPollMarker,
			"supplierGroups":  req.SupplierGroups,
			"questionColumns": req.QuestionColumns,
		},
		Questions: buildQuestions(questions),
	}
}

// SubmitSupplierResponse stores the group selection and the flattened evaluation table of one supplier
func (s *pollService) SubmitSupplierResponse(ctx context.Context, pollID uint, req *models.SupplierResponseRequest, session models.SessionInfo) (*models.PollResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	poll, err := s.View(ctx, pollID)
	if err != nil {
		return nil, err
	}
	if !poll.IsSupplierPoll() {
		return nil, ErrNotSupplierPoll
	}
	if err := s.checkOpen(poll, nil); err != nil {
		return nil, err
	}

	sessionID := resolveSessionID(nil, session)
	if err := s.checkNotResponded(ctx, poll, nil, sessionID); err != nil {
		return nil, err
	}

	answers, err := supplierAnswers(poll, req)
	if err != nil {
		return nil, err
	}

	response := s.newCompletedResponse(poll.ID, nil, sessionID, session)
	response.SupplierType = &req.SupplierType
	response.RespondentName = req.RespondentName
	response.RespondentEmail = req.RespondentEmail
	response.RespondentPhone = req.RespondentPhone
	response.RespondentCompany = req.RespondentCompany
	response.Feedback = req.Feedback

	return s.persistResponse(ctx, poll, response, answers)
}

// supplierAnswers maps the request onto the group question (order 0) and the matrix question (order 1).
// Matrix cells are keyed "<row>_<column>".
func supplierAnswers(poll *models.Poll, req *models.SupplierResponseRequest) ([]models.PollAnswer, error) {
	var answers []models.PollAnswer

	for i := range poll.Questions {
		q := &poll.Questions[i]
		switch q.Order {
		case 0:
			raw, err := json.Marshal(req.SupplierType)
			if err != nil {
				return nil, fmt.Errorf("failed to encode supplier type: %w", err)
			}
			answers = append(answers, models.NewPollAnswer(q.ID, models.AnswerValue{
				Kind:    models.AnswerOptions,
				Options: []string{string(req.SupplierType)},
				Raw:     raw,
			}))
		case 1:
			matrix := make(map[string]string, len(req.Responses)*len(supplierMatrixColumns))
			for _, row := range req.Responses {
				matrix[row.QuestionID+"_importance"] = row.Importance
				matrix[row.QuestionID+"_importanceOfTopic"] = row.ImportanceOfTopic
				matrix[row.QuestionID+"_companyPerformance"] = row.CompanyPerformance
				matrix[row.QuestionID+"_companyStatus"] = row.CompanyStatus
			}
			answers = append(answers, models.NewPollAnswer(q.ID, models.AnswerValue{
				Kind:   models.AnswerMatrix,
				Matrix: matrix,
			}))
		}
	}
	return answers, nil
}

// SeedSupplierPoll installs the default supplier questionnaire once
func (s *pollService) SeedSupplierPoll(ctx context.Context) (*models.Poll, error) {
	exists, err := s.repo.Poll().ExistsByMarker(ctx, models.SupplierPollMarker)
	if err != nil {
		return nil, fmt.Errorf("failed to check supplier poll: %w", err)
	}
	if exists {
		s.logger.Debug("Supplier poll already seeded")
		return nil, nil
	}

	poll, err := s.CreateSupplierPoll(ctx, defaultSupplierPoll(), nil)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Seeded supplier poll", "poll_id", poll.ID, "title", poll.Title)
	return poll, nil
}

func defaultSupplierPoll() *models.SupplierPollRequest {
	titles := []string{
		"۱- عملکرد شرکت در خصوص اطلاع رسانی و آگاهی دادن به تامین کنندگان را چگونه ارزیابی می کنید ؟",
		"۲- عملکرد شرکت سیمان داراب در انعقاد قرارداد متعهدانه با تامین کنندگان چگونه می باشد ؟",
		"۳- عملکرد شرکت سیمان داراب در خصوص میزان مقاومت فرآیند انتخاب تامین کنندگان را چگونه ارزیابی می کنید ؟",
		"۴- پیگیری همکاران بازرگانی سیمان داراب را بر روند مناقصات ارائه شده چگونه ارزیابی می کنید ؟",
		"۵- مکانیزم بازرسی فنی شرکت را در خصوص تایید یا عدم تایید محصولات و خدمات خود چگونه ارزیابی می کنید ؟",
		"۶- انضباط کاری، نحوه برخورد و رفتار پرسنل و مدیران پاسخگوی شرکت را چگونه ارزیابی می کنید ؟",
		"۷- اطلاع رسانی در رابطه با نواقص و مرجوعی ها توسط شرکت سیمان داراب و همچنین زمان لازم مناسب برای رفع آنها به تامین کننده را چگونه ارزیابی می نمایید ؟",
		"۸- عملکرد شرکت سیمان داراب در خصوص رضایت و زمان مناسب، مناقصات خرید و همچنین عدم تغییر مشخصات خرید در حین کار را چگونه ارزیابی می نمایید ؟",
		"۹- عملکرد شرکت سیمان داراب در خصوص ارائه راهنمایی های لازم و اطلاعات مناسب در هنگام بروز مشکلات را چگونه ارزیابی می نمایید ؟",
		"۱۰- عملکرد شرکت سیمان داراب در عمل به تعهدات مالی را چگونه ارزیابی می نمایید ؟",
		"۱۱- عملکرد شرکت سیمان داراب در اطلاع رسانی به موقع و ارتباط مؤثر در مواقعی که تعهدات مالی به تعویق می افتد را چگونه ارزیابی می نمایید ؟",
		"۱۲- در مجموع عملکرد شرکت را در خصوص برآورده سازی رضایتمندی تامین کنندگان چگونه ارزیابی می کنید ؟",
	}
	tableQuestions := make([]models.TableQuestion, 0, len(titles))
	for i, title := range titles {
		tableQuestions = append(tableQuestions, models.TableQuestion{
			ID:       fmt.Sprintf("tq%d", i+1),
			Title:    title,
			Required: true,
		})
	}

	return &models.SupplierPollRequest{
		Title:       "نظرسنجی رضایتمندی تأمین‌کنندگان - شرکت سیمان داراب",
		Description: ptr("لطفاً با ارزیابی عملکرد شرکت سیمان داراب در ارتباط با تأمین‌کنندگان، ما را در بهبود خدمات یاری کنید."),
		SupplierGroups: []models.SupplierGroup{
			{ID: "main", Label: "تأمین‌کننده اصلی"},
			{ID: "agency", Label: "نمایندگی/توزیع کننده"},
			{ID: "importer", Label: "شرکت بازرگانی/واردکننده"},
		},
		TableQuestions: tableQuestions,
		QuestionColumns: models.QuestionColumns{
			Importance: []models.QuestionColumn{
				{ID: "has", Label: "دارد"},
				{ID: "hasNot", Label: "ندارد"},
			},
			ImportanceOfTopic: []models.QuestionColumn{
				{ID: "high", Label: "زیاد"},
				{ID: "medium", Label: "متوسط"},
				{ID: "low", Label: "کم"},
			},
			CompanyPerformance: []models.QuestionColumn{
				{ID: "excellent", Label: "عالی"},
				{ID: "good", Label: "خوب"},
				{ID: "average", Label: "متوسط"},
				{ID: "poor", Label: "ضعیف"},
				{ID: "veryPoor", Label: "خیلی ضعیف"},
			},
			CompanyStatus: []models.QuestionColumn{
				{ID: "better", Label: "بهتر"},
				{ID: "similar", Label: "مشابه"},
				{ID: "worse", Label: "بدتر"},
			},
		},
	}
}
