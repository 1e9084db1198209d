package employees

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/employee-portal/portal/backend/go-services/internal/models"
	"github.com/employee-portal/portal/backend/go-services/pkg/httperr"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// nameRe limits name-ish fields to words, spaces and full stops.
	nameRe  = regexp.MustCompile(`^[a-zA-Z. ]+$`)
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// SkillInput is the embedded skill payload on create/update.
type SkillInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Input is the employee payload accepted by create and update. Active is a
// pointer so an absent boolean is distinguishable from false.
type Input struct {
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Email     string     `json:"email"`
	Age       int        `json:"age"`
	DOB       string     `json:"DOB"`
	Active    *bool      `json:"active"`
	Skill     SkillInput `json:"skill"`
}

// Service implements the directory operations over a Repository.
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service { return &Service{repo: r} }

// allFields is the validation checklist in reporting order.
var allFields = []string{"firstName", "lastName", "age", "DOB", "email", "active", "name", "description"}

// Validate checks every field and reports the full set of offending field
// names, so the client can highlight them all at once.
func Validate(in *Input) error {
	ok := map[string]bool{
		"firstName":   nameRe.MatchString(strings.TrimSpace(in.FirstName)),
		"lastName":    nameRe.MatchString(strings.TrimSpace(in.LastName)),
		"age":         in.Age > 0,
		"DOB":         in.DOB != "" && parseDOB(in.DOB) != nil,
		"email":       emailRe.MatchString(in.Email),
		"active":      in.Active != nil,
		"name":        nameRe.MatchString(strings.TrimSpace(in.Skill.Name)),
		"description": nameRe.MatchString(strings.TrimSpace(in.Skill.Description)),
	}

	emptyFields := []string{}
	for _, f := range allFields {
		if !ok[f] {
			emptyFields = append(emptyFields, f)
		}
	}

	switch {
	case len(emptyFields) == 0:
		return nil
	case len(emptyFields) == 1 && emptyFields[0] == "email":
		return httperr.BadRequest("Please Enter a valid Email", "email")
	case len(emptyFields) == 1 && emptyFields[0] == "age":
		return httperr.BadRequest("Please Enter a valid Age", "age")
	default:
		return httperr.BadRequest("Fields can only contain [Words, space and full stop]", emptyFields...)
	}
}

// parseDOB accepts a plain date or a full timestamp; nil means unparseable.
func parseDOB(s string) *time.Time {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func (in *Input) toModels() (*models.Employee, *models.SkillLevel) {
	dob := parseDOB(in.DOB)
	e := &models.Employee{
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     strings.ToLower(in.Email),
		Age:       in.Age,
		DOB:       *dob,
		Active:    *in.Active,
	}
	s := &models.SkillLevel{
		Name:        strings.TrimSpace(in.Skill.Name),
		Description: strings.TrimSpace(in.Skill.Description),
	}
	return e, s
}

// Add validates and stores a new employee with its skill document.
func (s *Service) Add(ctx context.Context, in *Input) (string, error) {
	if err := Validate(in); err != nil {
		return "", err
	}
	e, skill := in.toModels()

	exists, err := s.repo.ExistsByEmail(ctx, e.Email)
	if err != nil {
		return "", err
	}
	if exists {
		return "", httperr.Conflict("Email Already Exists", "email")
	}

	id, err := s.repo.Create(ctx, e, skill)
	if errors.Is(err, ErrDuplicateEmail) {
		return "", httperr.Conflict("Email Already Exists", "email")
	}
	return id, err
}

// List returns every employee with the skill populated.
func (s *Service) List(ctx context.Context) ([]models.Employee, error) {
	return s.repo.List(ctx)
}

// Update validates and rewrites an existing employee and its skill.
func (s *Service) Update(ctx context.Context, id string, in *Input) (*models.Employee, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}
	if !validID(id) {
		return nil, httperr.BadRequest("Invalid ID")
	}
	e, skill := in.toModels()
	e.ID = id

	err := s.repo.Update(ctx, e, skill)
	switch {
	case errors.Is(err, ErrNotFound):
		return nil, httperr.NotFound("Employee Not Found")
	case errors.Is(err, ErrDuplicateEmail):
		return nil, httperr.Conflict("Email Already Exists", "email")
	case err != nil:
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Delete removes an employee and its skill document.
func (s *Service) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return httperr.BadRequest("Invalid ID")
	}
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return httperr.NotFound("Employee Not Found")
	}
	return err
}

func validID(id string) bool {
	_, err := primitive.ObjectIDFromHex(id)
	return err == nil
}
