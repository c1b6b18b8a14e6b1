package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/hostel-complaint-service/internal/domain"
	"github.com/spec-kit/hostel-complaint-service/internal/events"
	"github.com/spec-kit/hostel-complaint-service/internal/repository"
	apperrors "github.com/spec-kit/hostel-complaint-service/pkg/util"
)

type memComplaintRepo struct {
	byID  map[string]domain.Complaint
	order []string
}

func newMemComplaintRepo() *memComplaintRepo {
	return &memComplaintRepo{byID: make(map[string]domain.Complaint)}
}

func (r *memComplaintRepo) Create(_ context.Context, complaint *domain.Complaint) error {
	r.byID[complaint.ID] = *complaint
	r.order = append(r.order, complaint.ID)
	return nil
}

func (r *memComplaintRepo) Update(_ context.Context, complaint *domain.Complaint) error {
	if _, ok := r.byID[complaint.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.byID[complaint.ID] = *complaint
	return nil
}

func (r *memComplaintRepo) GetByID(_ context.Context, id string) (*domain.Complaint, error) {
	complaint, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &complaint, nil
}

func (r *memComplaintRepo) ExistsID(_ context.Context, id string) (bool, error) {
	_, ok := r.byID[id]
	return ok, nil
}

func (r *memComplaintRepo) ListByStudent(_ context.Context, studentID string, _, _ int) ([]domain.Complaint, error) {
	out := []domain.Complaint{}
	for _, id := range r.order {
		if r.byID[id].StudentID == studentID {
			out = append(out, r.byID[id])
		}
	}
	return out, nil
}

func (r *memComplaintRepo) ListWithQuery(_ context.Context, _ repository.ComplaintQuery) ([]domain.Complaint, error) {
	out := []domain.Complaint{}
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out, nil
}

func (r *memComplaintRepo) CountByStatus(_ context.Context) (map[domain.ComplaintStatus]int64, error) {
	counts := make(map[domain.ComplaintStatus]int64)
	for _, complaint := range r.byID {
		counts[complaint.Status]++
	}
	return counts, nil
}

type memActionRepo struct {
	actions []domain.ComplaintAction
	nextID  int
}

func (r *memActionRepo) Create(_ context.Context, action *domain.ComplaintAction) error {
	r.nextID++
	action.ID = fmt.Sprintf("action-%d", r.nextID)
	r.actions = append(r.actions, *action)
	return nil
}

func (r *memActionRepo) ListByComplaint(_ context.Context, complaintID string) ([]domain.ComplaintAction, error) {
	out := []domain.ComplaintAction{}
	for _, action := range r.actions {
		if action.ComplaintID == complaintID {
			out = append(out, action)
		}
	}
	return out, nil
}

func (r *memActionRepo) CountByComplaint(_ context.Context, complaintID string) (int, error) {
	count := 0
	for _, action := range r.actions {
		if action.ComplaintID == complaintID {
			count++
		}
	}
	return count, nil
}

type memAttachmentRepo struct {
	byComplaint map[string][]domain.ComplaintAttachment
	byAction    map[string][]domain.ComplaintAttachment
	nextID      int
}

func newMemAttachmentRepo() *memAttachmentRepo {
	return &memAttachmentRepo{
		byComplaint: make(map[string][]domain.ComplaintAttachment),
		byAction:    make(map[string][]domain.ComplaintAttachment),
	}
}

func (r *memAttachmentRepo) CreateForComplaint(_ context.Context, complaintID string, attachment *domain.ComplaintAttachment) error {
	r.nextID++
	attachment.ID = fmt.Sprintf("att-%d", r.nextID)
	r.byComplaint[complaintID] = append(r.byComplaint[complaintID], *attachment)
	return nil
}

func (r *memAttachmentRepo) CreateForAction(_ context.Context, actionID string, attachment *domain.ComplaintAttachment) error {
	r.nextID++
	attachment.ID = fmt.Sprintf("att-%d", r.nextID)
	r.byAction[actionID] = append(r.byAction[actionID], *attachment)
	return nil
}

func (r *memAttachmentRepo) ListByComplaint(_ context.Context, complaintID string) ([]domain.ComplaintAttachment, error) {
	return r.byComplaint[complaintID], nil
}

func (r *memAttachmentRepo) ListByAction(_ context.Context, actionID string) ([]domain.ComplaintAttachment, error) {
	return r.byAction[actionID], nil
}

type capturingDispatcher struct {
	published []events.Event
}

func (d *capturingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return nil
}

func (d *capturingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

type serviceFixture struct {
	svc         *ComplaintService
	complaints  *memComplaintRepo
	actions     *memActionRepo
	attachments *memAttachmentRepo
	dispatcher  *capturingDispatcher
}

func newServiceFixture(opts ...func(*ComplaintDependencies)) *serviceFixture {
	f := &serviceFixture{
		complaints:  newMemComplaintRepo(),
		actions:     &memActionRepo{},
		attachments: newMemAttachmentRepo(),
		dispatcher:  &capturingDispatcher{},
	}
	deps := ComplaintDependencies{
		ComplaintRepo:  f.complaints,
		ActionRepo:     f.actions,
		AttachmentRepo: f.attachments,
		Dispatcher:     f.dispatcher,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	f.svc = NewComplaintService(deps)
	return f
}

func createInput() ComplaintCreateInput {
	return ComplaintCreateInput{
		Title:        "Broken fan in room 204",
		Description:  "The ceiling fan sparks when switched on.",
		Category:     domain.CategoryElectricity,
		Priority:     domain.ComplaintPriorityHigh,
		StudentID:    "student-1",
		StudentName:  "Asha Verma",
		StudentEmail: "asha@hostel.test",
		RollNumber:   "CS-2021-042",
		Branch:       "CSE",
		Semester:     5,
	}
}

var complaintIDPattern = regexp.MustCompile(`^COMP-\d{5}$`)

func TestCreateComplaintDefaults(t *testing.T) {
	f := newServiceFixture()

	complaint, err := f.svc.CreateComplaint(context.Background(), createInput())
	require.NoError(t, err)

	assert.Regexp(t, complaintIDPattern, complaint.ID)
	assert.Equal(t, domain.ComplaintStatusPending, complaint.Status)
	assert.Equal(t, 0, complaint.ActionCount)
	assert.Empty(t, complaint.ForwardedTo)
	assert.Nil(t, complaint.ResolvedAt)
	assert.Equal(t, complaint.CreatedAt, complaint.UpdatedAt)
	assert.Equal(t, complaint.CreatedAt.Add(domain.SLAWindow), complaint.SLADeadline)

	require.Len(t, f.dispatcher.published, 1)
	assert.Equal(t, events.EventComplaintCreated, f.dispatcher.published[0].Type)
}

func TestCreateComplaintDefaultsPriorityToMedium(t *testing.T) {
	f := newServiceFixture()

	input := createInput()
	input.Priority = ""
	complaint, err := f.svc.CreateComplaint(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, domain.ComplaintPriorityMedium, complaint.Priority)
}

func TestCreateComplaintRetriesIDCollisions(t *testing.T) {
	draws := []int{7, 7, 7, 42}
	idx := 0
	f := newServiceFixture(func(deps *ComplaintDependencies) {
		deps.IDSource = func() int {
			v := draws[idx%len(draws)]
			idx++
			return v
		}
	})

	first, err := f.svc.CreateComplaint(context.Background(), createInput())
	require.NoError(t, err)
	assert.Equal(t, "COMP-00007", first.ID)

	// the next three draws collide with the existing record
	second, err := f.svc.CreateComplaint(context.Background(), createInput())
	require.NoError(t, err)
	assert.Equal(t, "COMP-00042", second.ID)
	assert.Equal(t, 4, idx)
}

func TestCreateComplaintExhaustsIDCandidates(t *testing.T) {
	f := newServiceFixture(func(deps *ComplaintDependencies) {
		deps.IDSource = func() int { return 7 }
		deps.IDRetries = 3
	})

	_, err := f.svc.CreateComplaint(context.Background(), createInput())
	require.NoError(t, err)

	_, err = f.svc.CreateComplaint(context.Background(), createInput())
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "INTERNAL_ERROR"))
	assert.Len(t, f.complaints.order, 1)
}

func TestAppendActionUnknownComplaint(t *testing.T) {
	f := newServiceFixture()

	_, err := f.svc.AppendAction(context.Background(), AdminActor("admin-1"), "COMP-99999", ActionInput{
		ActorName:  "Warden Rao",
		ActorRole:  "warden",
		ActionType: domain.ActionTypeComment,
		Comment:    "looking into it",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
	assert.Empty(t, f.actions.actions)
	assert.Empty(t, f.dispatcher.published)
}

func TestAppendActionMaterializesCount(t *testing.T) {
	f := newServiceFixture()
	complaint, err := f.svc.CreateComplaint(context.Background(), createInput())
	require.NoError(t, err)

	for i := 1; i <= 4; i++ {
		_, err := f.svc.AppendAction(context.Background(), AdminActor("admin-1"), complaint.ID, ActionInput{
			ActorName:  "Warden Rao",
			ActorRole:  "warden",
			ActionType: domain.ActionTypeComment,
			Comment:    fmt.Sprintf("update %d", i),
		})
		require.NoError(t, err)

		stored, err := f.complaints.GetByID(context.Background(), complaint.ID)
		require.NoError(t, err)
		assert.Equal(t, i, stored.ActionCount)
	}

	stored, err := f.complaints.GetByID(context.Background(), complaint.ID)
	require.NoError(t, err)
	assert.True(t, stored.UpdatedAt.After(stored.CreatedAt) || stored.UpdatedAt.Equal(stored.CreatedAt))
	badge := domain.DeriveDisplayStatus(stored.Status, stored.ActionCount)
	assert.Equal(t, "Many Actions", badge.Label)
}

func TestAppendActionResolveStampsOnce(t *testing.T) {
	f := newServiceFixture()
	complaint, err := f.svc.CreateComplaint(context.Background(), createInput())
	require.NoError(t, err)

	_, err = f.svc.AppendAction(context.Background(), AdminActor("admin-1"), complaint.ID, ActionInput{
		ActorName:  "Warden Rao",
		ActorRole:  "warden",
		ActionType: domain.ActionTypeResolve,
		Comment:    "fixed by electrician",
	})
	require.NoError(t, err)

	stored, err := f.complaints.GetByID(context.Background(), complaint.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ComplaintStatusResolved, stored.Status)
	require.NotNil(t, stored.ResolvedAt)
	firstStamp := *stored.ResolvedAt

	time.Sleep(2 * time.Millisecond)

	_, err = f.svc.AppendAction(context.Background(), AdminActor("admin-2"), complaint.ID, ActionInput{
		ActorName:  "Admin Iyer",
		ActorRole:  "admin",
		ActionType: domain.ActionTypeResolve,
		Comment:    "confirming closure",
	})
	require.NoError(t, err)

	stored, err = f.complaints.GetByID(context.Background(), complaint.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.ActionCount)
	require.NotNil(t, stored.ResolvedAt)
	assert.True(t, stored.ResolvedAt.Equal(firstStamp))
}

func TestAppendActionForwardAccumulatesRecipients(t *testing.T) {
	f := newServiceFixture()
	complaint, err := f.svc.CreateComplaint(context.Background(), createInput())
	require.NoError(t, err)

	_, err = f.svc.AppendAction(context.Background(), AdminActor("admin-1"), complaint.ID, ActionInput{
		ActorName:  "Warden Rao",
		ActorRole:  "warden",
		ActionType: domain.ActionTypeForward,
		Comment:    "needs maintenance team",
		Recipients: []string{"Maintenance"},
	})
	require.NoError(t, err)

	_, err = f.svc.AppendAction(context.Background(), AdminActor("admin-1"), complaint.ID, ActionInput{
		ActorName:  "Warden Rao",
		ActorRole:  "warden",
		ActionType: domain.ActionTypeComment,
		Comment:    "waiting on parts",
	})
	require.NoError(t, err)

	_, err = f.svc.AppendAction(context.Background(), AdminActor("admin-1"), complaint.ID, ActionInput{
		ActorName:  "Warden Rao",
		ActorRole:  "warden",
		ActionType: domain.ActionTypeForward,
		Comment:    "escalate to estate office",
		Recipients: []string{"Estate Office", "Electrician"},
	})
	require.NoError(t, err)

	stored, err := f.complaints.GetByID(context.Background(), complaint.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Maintenance", "Estate Office", "Electrician"}, stored.ForwardedTo)

	forwarded := 0
	for _, event := range f.dispatcher.published {
		if event.Type == events.EventComplaintForwarded {
			forwarded++
		}
	}
	assert.Equal(t, 2, forwarded)
}

func TestAppendActionStatusChangeToResolvedStamps(t *testing.T) {
	f := newServiceFixture()
	complaint, err := f.svc.CreateComplaint(context.Background(), createInput())
	require.NoError(t, err)

	resolved := domain.ComplaintStatusResolved
	_, err = f.svc.AppendAction(context.Background(), AdminActor("admin-1"), complaint.ID, ActionInput{
		ActorName:  "Warden Rao",
		ActorRole:  "warden",
		ActionType: domain.ActionTypeStatusChange,
		NewStatus:  &resolved,
	})
	require.NoError(t, err)

	stored, err := f.complaints.GetByID(context.Background(), complaint.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ComplaintStatusResolved, stored.Status)
	assert.NotNil(t, stored.ResolvedAt)
}

func TestListActionsAscendingAndEmpty(t *testing.T) {
	f := newServiceFixture()
	complaint, err := f.svc.CreateComplaint(context.Background(), createInput())
	require.NoError(t, err)

	actions, err := f.svc.ListActions(context.Background(), complaint.ID)
	require.NoError(t, err)
	assert.NotNil(t, actions)
	assert.Empty(t, actions)

	for _, comment := range []string{"first", "second", "third"} {
		_, err := f.svc.AppendAction(context.Background(), AdminActor("admin-1"), complaint.ID, ActionInput{
			ActorName:  "Warden Rao",
			ActorRole:  "warden",
			ActionType: domain.ActionTypeComment,
			Comment:    comment,
		})
		require.NoError(t, err)
	}

	actions, err = f.svc.ListActions(context.Background(), complaint.ID)
	require.NoError(t, err)
	require.Len(t, actions, 3)
	assert.Equal(t, "first", actions[0].Comment)
	assert.Equal(t, "second", actions[1].Comment)
	assert.Equal(t, "third", actions[2].Comment)
	for i := 1; i < len(actions); i++ {
		assert.False(t, actions[i].Timestamp.Before(actions[i-1].Timestamp))
	}
}

func TestGetComplaintForStudentEnforcesOwnership(t *testing.T) {
	f := newServiceFixture()
	complaint, err := f.svc.CreateComplaint(context.Background(), createInput())
	require.NoError(t, err)

	_, _, err = f.svc.GetComplaintForStudent(context.Background(), "student-2", complaint.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	got, _, err := f.svc.GetComplaintForStudent(context.Background(), "student-1", complaint.ID)
	require.NoError(t, err)
	assert.Equal(t, complaint.ID, got.ID)
	assert.Equal(t, "Asha Verma", got.StudentName)
}

func TestGetComplaintForAdminRedactsAnonymous(t *testing.T) {
	f := newServiceFixture()

	input := createInput()
	input.IsAnonymous = true
	phone := "9876543210"
	input.StudentPhone = &phone
	complaint, err := f.svc.CreateComplaint(context.Background(), input)
	require.NoError(t, err)

	got, _, err := f.svc.GetComplaintForAdmin(context.Background(), complaint.ID)
	require.NoError(t, err)
	assert.Equal(t, "Anonymous", got.StudentName)
	assert.Empty(t, got.StudentEmail)
	assert.Nil(t, got.StudentPhone)
	assert.Empty(t, got.RollNumber)

	// the owner still sees their own identity
	own, _, err := f.svc.GetComplaintForStudent(context.Background(), "student-1", complaint.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asha Verma", own.StudentName)
}

func TestStringPreviewKeepsRunesIntact(t *testing.T) {
	long := strings.Repeat("नि", 80)
	got := stringPreview(long, 120)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("नि", 58)+"न"+"...", got)

	// runes, not bytes, decide whether truncation happens at all
	short := strings.Repeat("म", 100)
	assert.Equal(t, short, stringPreview(short, 120))

	assert.Equal(t, "trimmed", stringPreview("  trimmed  ", 120))
}
