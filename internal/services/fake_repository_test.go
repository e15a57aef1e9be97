package services

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/darab-cement/cms-service/internal/models"
	"github.com/darab-cement/cms-service/internal/repositories"
	"github.com/darab-cement/cms-service/internal/validator"
)

// fakeRepository keeps every table in memory; repositories the tests never touch return nil
type fakeRepository struct {
	mu sync.Mutex

	nextID uint

	users       map[uint]models.User
	polls       map[uint]models.Poll
	questions   map[uint]models.PollQuestion
	responses   map[uint]models.PollResponse
	answers     map[uint]models.PollAnswer
	simplePolls map[uint]models.SimplePoll
	tickets     map[uint]models.Ticket
	messages    map[uint]models.TicketMessage
	settings    map[uint]models.LandingSetting

	ticketStats models.TicketStats
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		users:       map[uint]models.User{},
		polls:       map[uint]models.Poll{},
		questions:   map[uint]models.PollQuestion{},
		responses:   map[uint]models.PollResponse{},
		answers:     map[uint]models.PollAnswer{},
		simplePolls: map[uint]models.SimplePoll{},
		tickets:     map[uint]models.Ticket{},
		messages:    map[uint]models.TicketMessage{},
		settings:    map[uint]models.LandingSetting{},
	}
}

func (r *fakeRepository) id() uint {
	r.nextID++
	return r.nextID
}

func (r *fakeRepository) User() repositories.UserRepository                 { return fakeUsers{r} }
func (r *fakeRepository) Poll() repositories.PollRepository                 { return fakePolls{r} }
func (r *fakeRepository) PollQuestion() repositories.PollQuestionRepository { return fakeQuestions{r} }
func (r *fakeRepository) PollResponse() repositories.PollResponseRepository { return fakeResponses{r} }
func (r *fakeRepository) PollAnswer() repositories.PollAnswerRepository     { return fakeAnswers{r} }
func (r *fakeRepository) SimplePoll() repositories.SimplePollRepository     { return fakeSimplePolls{r} }
func (r *fakeRepository) Post() repositories.PostRepository                 { return nil }
func (r *fakeRepository) Comment() repositories.CommentRepository           { return nil }
func (r *fakeRepository) Category() repositories.CategoryRepository         { return nil }
func (r *fakeRepository) Product() repositories.ProductRepository           { return nil }
func (r *fakeRepository) Media() repositories.MediaRepository               { return nil }
func (r *fakeRepository) Personnel() repositories.PersonnelRepository       { return nil }
func (r *fakeRepository) LandingSetting() repositories.LandingSettingRepository {
	return fakeSettings{r}
}
func (r *fakeRepository) Ticket() repositories.TicketRepository               { return fakeTickets{r} }
func (r *fakeRepository) TicketMessage() repositories.TicketMessageRepository { return fakeMessages{r} }
func (r *fakeRepository) Dashboard() repositories.DashboardRepository         { return fakeDashboard{r} }

func (r *fakeRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(r)
}

func (r *fakeRepository) Ping(ctx context.Context) error { return nil }
func (r *fakeRepository) Close() error                   { return nil }

// ===== USERS =====

type fakeUsers struct{ r *fakeRepository }

func (f fakeUsers) Create(ctx context.Context, user *models.User) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	for _, u := range f.r.users {
		if u.Email == user.Email {
			return repositories.ErrDuplicate
		}
	}
	user.ID = f.r.id()
	f.r.users[user.ID] = *user
	return nil
}

func (f fakeUsers) GetByID(ctx context.Context, id uint) (*models.User, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	u, ok := f.r.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &u, nil
}

func (f fakeUsers) find(match func(models.User) bool) (*models.User, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	for _, u := range f.r.users {
		if match(u) {
			found := u
			return &found, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f fakeUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return f.find(func(u models.User) bool { return u.Email == email })
}

func (f fakeUsers) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	return f.find(func(u models.User) bool { return u.ExternalID != nil && *u.ExternalID == externalID })
}

func (f fakeUsers) Update(ctx context.Context, user *models.User) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	if _, ok := f.r.users[user.ID]; !ok {
		return repositories.ErrNotFound
	}
	f.r.users[user.ID] = *user
	return nil
}

func (f fakeUsers) Delete(ctx context.Context, id uint) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	if _, ok := f.r.users[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.r.users, id)
	return nil
}

func (f fakeUsers) List(ctx context.Context, params models.UserListParams) ([]models.User, int64, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	var out []models.User
	for _, u := range f.r.users {
		if params.Role == "" || u.Role == params.Role {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (f fakeUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := f.GetByEmail(ctx, email)
	return err == nil, nil
}

// ===== POLLS =====

type fakePolls struct{ r *fakeRepository }

func (f fakePolls) Create(ctx context.Context, poll *models.Poll) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	poll.ID = f.r.id()
	for i := range poll.Questions {
		poll.Questions[i].ID = f.r.id()
		poll.Questions[i].PollID = poll.ID
		f.r.questions[poll.Questions[i].ID] = poll.Questions[i]
	}
	stored := *poll
	stored.Questions = nil
	f.r.polls[poll.ID] = stored
	return nil
}

func (f fakePolls) load(id uint) (*models.Poll, bool) {
	p, ok := f.r.polls[id]
	if !ok {
		return nil, false
	}
	p.Questions = f.r.questionsOf(id)
	return &p, true
}

func (r *fakeRepository) questionsOf(pollID uint) []models.PollQuestion {
	var out []models.PollQuestion
	for _, q := range r.questions {
		if q.PollID == pollID {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (f fakePolls) GetByID(ctx context.Context, id uint) (*models.Poll, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	p, ok := f.load(id)
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return p, nil
}

func (f fakePolls) Update(ctx context.Context, poll *models.Poll) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	if _, ok := f.r.polls[poll.ID]; !ok {
		return repositories.ErrNotFound
	}
	stored := *poll
	stored.Questions = nil
	f.r.polls[poll.ID] = stored
	return nil
}

func (f fakePolls) UpdateStatus(ctx context.Context, id uint, status models.PollStatus) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	p, ok := f.r.polls[id]
	if !ok {
		return repositories.ErrNotFound
	}
	p.Status = status
	f.r.polls[id] = p
	return nil
}

func (f fakePolls) Delete(ctx context.Context, id uint) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	if _, ok := f.r.polls[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.r.polls, id)
	for qid, q := range f.r.questions {
		if q.PollID == id {
			delete(f.r.questions, qid)
		}
	}
	return nil
}

func (f fakePolls) list(match func(models.Poll) bool) []models.Poll {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	var out []models.Poll
	for id, p := range f.r.polls {
		if match(p) {
			loaded, _ := f.load(id)
			out = append(out, *loaded)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (f fakePolls) List(ctx context.Context, filter models.PollFilter) ([]models.Poll, error) {
	return f.list(func(p models.Poll) bool {
		if filter.Status != "" && p.Status != filter.Status {
			return false
		}
		if filter.Type != "" && p.Type != filter.Type {
			return false
		}
		return filter.CreatedBy == nil || p.OwnerID() == *filter.CreatedBy
	}), nil
}

func (f fakePolls) ListActive(ctx context.Context, now time.Time) ([]models.Poll, error) {
	return f.list(func(p models.Poll) bool {
		return p.Status == models.PollStatusActive && p.WithinWindow(now)
	}), nil
}

func (f fakePolls) ExistsByMarker(ctx context.Context, marker string) (bool, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	for _, p := range f.r.polls {
		if kind, _ := p.Metadata["pollType"].(string); kind == marker {
			return true, nil
		}
	}
	return false, nil
}

func (f fakePolls) bump(id uint, field func(*models.Poll)) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	p, ok := f.r.polls[id]
	if !ok {
		return repositories.ErrNotFound
	}
	field(&p)
	f.r.polls[id] = p
	return nil
}

func (f fakePolls) IncrementViewCount(ctx context.Context, id uint) error {
	return f.bump(id, func(p *models.Poll) { p.ViewCount++ })
}

func (f fakePolls) IncrementResponseCount(ctx context.Context, id uint) error {
	return f.bump(id, func(p *models.Poll) { p.ResponseCount++ })
}

type fakeQuestions struct{ r *fakeRepository }

func (f fakeQuestions) CreateBatch(ctx context.Context, questions []models.PollQuestion) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	for i := range questions {
		questions[i].ID = f.r.id()
		f.r.questions[questions[i].ID] = questions[i]
	}
	return nil
}

func (f fakeQuestions) GetByPollID(ctx context.Context, pollID uint) ([]models.PollQuestion, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	return f.r.questionsOf(pollID), nil
}

func (f fakeQuestions) GetByIDForPoll(ctx context.Context, pollID, questionID uint) (*models.PollQuestion, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	q, ok := f.r.questions[questionID]
	if !ok || q.PollID != pollID {
		return nil, repositories.ErrNotFound
	}
	return &q, nil
}

func (f fakeQuestions) DeleteByPollID(ctx context.Context, pollID uint) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	for id, q := range f.r.questions {
		if q.PollID == pollID {
			delete(f.r.questions, id)
		}
	}
	return nil
}

// ===== RESPONSES =====

type fakeResponses struct{ r *fakeRepository }

func (f fakeResponses) Create(ctx context.Context, response *models.PollResponse) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	response.ID = f.r.id()
	stored := *response
	stored.Answers = nil
	f.r.responses[response.ID] = stored
	return nil
}

func (f fakeResponses) load(id uint) (*models.PollResponse, bool) {
	resp, ok := f.r.responses[id]
	if !ok {
		return nil, false
	}
	for _, a := range f.r.answers {
		if a.ResponseID == id {
			resp.Answers = append(resp.Answers, a)
		}
	}
	sort.Slice(resp.Answers, func(i, j int) bool { return resp.Answers[i].ID < resp.Answers[j].ID })
	if p, ok := f.r.polls[resp.PollID]; ok {
		resp.Poll = &p
	}
	if resp.UserID != nil {
		if u, ok := f.r.users[*resp.UserID]; ok {
			resp.User = &u
		}
	}
	return &resp, true
}

func (f fakeResponses) GetByID(ctx context.Context, id uint) (*models.PollResponse, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	resp, ok := f.load(id)
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return resp, nil
}

func (f fakeResponses) list(pollID uint, completedOnly bool) []models.PollResponse {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	var out []models.PollResponse
	for id, resp := range f.r.responses {
		if resp.PollID != pollID || (completedOnly && resp.Status != models.ResponseCompleted) {
			continue
		}
		loaded, _ := f.load(id)
		out = append(out, *loaded)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f fakeResponses) ListByPoll(ctx context.Context, pollID uint) ([]models.PollResponse, error) {
	return f.list(pollID, false), nil
}

func (f fakeResponses) ListCompleted(ctx context.Context, pollID uint) ([]models.PollResponse, error) {
	return f.list(pollID, true), nil
}

func (f fakeResponses) CountByPoll(ctx context.Context, pollID uint) (int64, error) {
	return int64(len(f.list(pollID, false))), nil
}

func (f fakeResponses) HasCompleted(ctx context.Context, pollID uint, userID *uint, sessionID string) (bool, error) {
	for _, resp := range f.list(pollID, true) {
		if userID != nil {
			if resp.UserID != nil && *resp.UserID == *userID {
				return true, nil
			}
			continue
		}
		if resp.SessionID != nil && *resp.SessionID == sessionID {
			return true, nil
		}
	}
	return false, nil
}

type fakeAnswers struct{ r *fakeRepository }

func (f fakeAnswers) CreateBatch(ctx context.Context, answers []models.PollAnswer) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	for i := range answers {
		answers[i].ID = f.r.id()
		f.r.answers[answers[i].ID] = answers[i]
	}
	return nil
}

func (f fakeAnswers) ListByResponse(ctx context.Context, responseID uint) ([]models.PollAnswer, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	var out []models.PollAnswer
	for _, a := range f.r.answers {
		if a.ResponseID == responseID {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeSimplePolls struct{ r *fakeRepository }

func (f fakeSimplePolls) Create(ctx context.Context, poll *models.SimplePoll) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	poll.ID = f.r.id()
	f.r.simplePolls[poll.ID] = *poll
	return nil
}

func (f fakeSimplePolls) GetByID(ctx context.Context, id uint) (*models.SimplePoll, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	p, ok := f.r.simplePolls[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &p, nil
}

func (f fakeSimplePolls) List(ctx context.Context) ([]models.SimplePoll, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	var out []models.SimplePoll
	for _, p := range f.r.simplePolls {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f fakeSimplePolls) Delete(ctx context.Context, id uint) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	if _, ok := f.r.simplePolls[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.r.simplePolls, id)
	return nil
}

// ===== TICKETS =====

type fakeTickets struct{ r *fakeRepository }

func (f fakeTickets) Create(ctx context.Context, ticket *models.Ticket) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	ticket.ID = f.r.id()
	for i := range ticket.Messages {
		ticket.Messages[i].ID = f.r.id()
		ticket.Messages[i].TicketID = ticket.ID
		f.r.messages[ticket.Messages[i].ID] = ticket.Messages[i]
	}
	stored := *ticket
	stored.Messages = nil
	f.r.tickets[ticket.ID] = stored
	return nil
}

func (f fakeTickets) load(id uint) (*models.Ticket, bool) {
	t, ok := f.r.tickets[id]
	if !ok {
		return nil, false
	}
	for _, m := range f.r.messages {
		if m.TicketID == id {
			t.Messages = append(t.Messages, m)
		}
	}
	sort.Slice(t.Messages, func(i, j int) bool { return t.Messages[i].ID < t.Messages[j].ID })
	return &t, true
}

func (f fakeTickets) GetByID(ctx context.Context, id uint) (*models.Ticket, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	t, ok := f.load(id)
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return t, nil
}

func (f fakeTickets) List(ctx context.Context, params models.TicketListParams) ([]models.Ticket, int64, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	var out []models.Ticket
	for _, t := range f.r.tickets {
		if params.UserID != nil && t.UserID != *params.UserID {
			continue
		}
		if params.Status != "" && t.Status != params.Status {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, int64(len(out)), nil
}

func (f fakeTickets) UpdateStatus(ctx context.Context, id uint, status models.TicketStatus) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	t, ok := f.r.tickets[id]
	if !ok {
		return repositories.ErrNotFound
	}
	t.Status = status
	f.r.tickets[id] = t
	return nil
}

func (f fakeTickets) Delete(ctx context.Context, id uint) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	if _, ok := f.r.tickets[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.r.tickets, id)
	return nil
}

type fakeMessages struct{ r *fakeRepository }

func (f fakeMessages) Create(ctx context.Context, message *models.TicketMessage) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	message.ID = f.r.id()
	f.r.messages[message.ID] = *message
	return nil
}

func (f fakeMessages) ListByTicket(ctx context.Context, ticketID uint) ([]models.TicketMessage, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	t, ok := fakeTickets{f.r}.load(ticketID)
	if !ok {
		return nil, nil
	}
	return t.Messages, nil
}

type fakeDashboard struct{ r *fakeRepository }

func (f fakeDashboard) GetPollDashboard(ctx context.Context, recentLimit int) (*models.PollDashboard, error) {
	return &models.PollDashboard{}, nil
}

func (f fakeDashboard) GetTicketStats(ctx context.Context) (*models.TicketStats, error) {
	stats := f.r.ticketStats
	return &stats, nil
}

// ===== LANDING SETTINGS =====

type fakeSettings struct{ r *fakeRepository }

func (f fakeSettings) Create(ctx context.Context, setting *models.LandingSetting) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	for _, s := range f.r.settings {
		if s.Key == setting.Key {
			return repositories.ErrDuplicate
		}
	}
	setting.ID = f.r.id()
	f.r.settings[setting.ID] = *setting
	return nil
}

func (f fakeSettings) GetByID(ctx context.Context, id uint) (*models.LandingSetting, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	s, ok := f.r.settings[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &s, nil
}

func (f fakeSettings) GetByKey(ctx context.Context, key string) (*models.LandingSetting, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	for _, s := range f.r.settings {
		if s.Key == key {
			found := s
			return &found, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f fakeSettings) List(ctx context.Context) ([]models.LandingSetting, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	var out []models.LandingSetting
	for _, s := range f.r.settings {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (f fakeSettings) Update(ctx context.Context, setting *models.LandingSetting) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	if _, ok := f.r.settings[setting.ID]; !ok {
		return repositories.ErrNotFound
	}
	f.r.settings[setting.ID] = *setting
	return nil
}

func (f fakeSettings) Delete(ctx context.Context, id uint) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	if _, ok := f.r.settings[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.r.settings, id)
	return nil
}

// ===== SHARED FIXTURES =====

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testValidator() *validator.Validator {
	return validator.New()
}

var (
	testAdmin = &models.User{ID: 1000, Email: "admin@darab.test", Role: models.RoleAdmin, IsActive: true}
	testOwner = &models.User{ID: 1001, Email: "owner@darab.test", Role: models.RoleUser, IsActive: true}
	testOther = &models.User{ID: 1002, Email: "other@darab.test", Role: models.RoleUser, IsActive: true}
)
