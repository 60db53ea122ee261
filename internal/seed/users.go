package seed

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode"

	"hrdesk/internal/models"
	"hrdesk/internal/service"
	"hrdesk/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// DemoPassword is the password of every seeded user.
const DemoPassword = "password123"

// Factory builds fake submissions that satisfy a profile catalog.
type Factory struct {
	faker *gofakeit.Faker
	seq   int
}

// NewFactory returns a Factory; a zero seed picks a time-based one.
func NewFactory(seed int64) *Factory {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Factory{faker: gofakeit.New(seed)}
}

// Login returns a fresh alphanumeric login.
func (f *Factory) Login() string {
	f.seq++
	return fmt.Sprintf("%s%d", alnum(strings.ToLower(f.faker.FirstName())), f.seq)
}

// Submission builds a create payload for catalog. File profiles are left out.
func (f *Factory) Submission(catalog []models.Profile) map[string]string {
	values := map[string]string{
		validation.FieldLogin:    f.Login(),
		validation.FieldPassword: DemoPassword,
	}
	for _, p := range catalog {
		if v, ok := f.Value(p); ok {
			values[p.Slug] = v
		}
	}
	return values
}

// Value returns a value accepted by the rules of p.
func (f *Factory) Value(p models.Profile) (string, bool) {
	switch p.Type {
	case models.ProfileTypeFile:
		return "", false
	case models.ProfileTypeSelect:
		keys := p.OptionKeys()
		if len(keys) == 0 {
			return "", false
		}
		return f.faker.RandomString(keys), true
	case models.ProfileTypeEmail:
		return fmt.Sprintf("%d.%s", f.seq, f.faker.Email()), true
	case models.ProfileTypeURL:
		return f.faker.URL(), true
	case models.ProfileTypeDate:
		return f.faker.DateRange(time.Now().AddDate(-20, 0, 0), time.Now()).Format(time.DateOnly), true
	case models.ProfileTypeNumber:
		lo, hi := 0, 1000
		if v, ok := p.MinBound(); ok {
			lo = int(v)
		}
		if v, ok := p.MaxBound(); ok {
			hi = int(v)
		}
		if hi < lo {
			hi = lo
		}
		return fmt.Sprintf("%d", f.faker.Number(lo, hi)), true
	default:
		return f.text(p), true
	}
}

func (f *Factory) text(p models.Profile) string {
	s := alnum(f.faker.Word())
	if p.IsUnique {
		s = fmt.Sprintf("%s%d", s, f.seq)
	}
	if v, ok := p.MinBound(); ok && len(s) < int(v) {
		s += strings.Repeat("x", int(v)-len(s))
	}
	if v, ok := p.MaxBound(); ok && len(s) > int(v) {
		// Keep the sequence suffix so unique values stay distinct.
		s = s[len(s)-int(v):]
	}
	return s
}

func alnum(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}

// Users creates n fake users through the regular write path, so every
// seeded record passes validation. Rejected submissions are logged and skipped.
func Users(ctx context.Context, users *service.UserService, catalog []models.Profile, f *Factory, n int) (int, error) {
	created := 0
	for i := 0; i < n; i++ {
		in := validation.NewInput(f.Submission(catalog), nil)
		if _, err := users.Create(ctx, in); err != nil {
			if models.IsKind(err, models.KindValidation) {
				log.Printf("skipping generated user: %v", err)
				continue
			}
			return created, err
		}
		created++
	}
	return created, nil
}

// Clear removes every user and profile value. The catalog stays unless
// withCatalog is set.
func Clear(ctx context.Context, db *gorm.DB, withCatalog bool) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		targets := []any{&models.ProfileValue{}, &models.User{}}
		if withCatalog {
			targets = append(targets, &models.SelectOption{}, &models.Profile{})
		}
		for _, m := range targets {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(m).Error; err != nil {
				return fmt.Errorf("clear %T: %w", m, err)
			}
		}
		return nil
	})
}
