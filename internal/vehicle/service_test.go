package vehicle

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/hitoshi/carhub/internal/model"
	"github.com/hitoshi/carhub/internal/repository"
	"github.com/hitoshi/carhub/internal/security"
)

// --- モック定義 ---

type mockVehicleRepo struct {
	findByIDFn       func(ctx context.Context, id string) (*model.Vehicle, error)
	createFn         func(ctx context.Context, vehicle *model.Vehicle) error
	listAvailableFn  func(ctx context.Context, filter model.VehicleFilter) ([]*model.Vehicle, error)
	listBySellerIDFn func(ctx context.Context, sellerID string) ([]*model.Vehicle, error)
}

func (m *mockVehicleRepo) FindByID(ctx context.Context, id string) (*model.Vehicle, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockVehicleRepo) Create(ctx context.Context, vehicle *model.Vehicle) error {
	if m.createFn != nil {
		return m.createFn(ctx, vehicle)
	}
	return nil
}

func (m *mockVehicleRepo) ListAvailable(ctx context.Context, filter model.VehicleFilter) ([]*model.Vehicle, error) {
	if m.listAvailableFn != nil {
		return m.listAvailableFn(ctx, filter)
	}
	return nil, nil
}

func (m *mockVehicleRepo) ListBySellerID(ctx context.Context, sellerID string) ([]*model.Vehicle, error) {
	if m.listBySellerIDFn != nil {
		return m.listBySellerIDFn(ctx, sellerID)
	}
	return nil, nil
}

type mockSanitizer struct {
	sanitizeFn func(rawHTML string) string
}

func (m *mockSanitizer) Sanitize(rawHTML string) string {
	if m.sanitizeFn != nil {
		return m.sanitizeFn(rawHTML)
	}
	return rawHTML
}

type mockSSRFGuard struct {
	validateURLFn func(rawURL string) error
}

func (m *mockSSRFGuard) NewSafeClient(timeout time.Duration, maxResponseSize int64) *http.Client {
	return http.DefaultClient
}

func (m *mockSSRFGuard) ValidateURL(rawURL string) error {
	if m.validateURLFn != nil {
		return m.validateURLFn(rawURL)
	}
	return nil
}

// --- compile-time interface checks ---
var (
	_ repository.VehicleRepository     = (*mockVehicleRepo)(nil)
	_ security.ContentSanitizerService = (*mockSanitizer)(nil)
	_ security.SSRFGuardService        = (*mockSSRFGuard)(nil)
)

func validInput() CreateInput {
	return CreateInput{
		SellerID:    "seller-1",
		SellerClass: model.AccountPerson,
		Make:        "Toyota",
		Model:       "Corolla",
		Year:        2021,
		Mileage:     35000,
		Price:       98000,
		FuelType:    "Flex",
		Color:       "Prata",
		Description: "<p>Único dono</p>",
	}
}

// --- テスト ---

func TestCreate_Success(t *testing.T) {
	ctx := context.Background()

	var saved *model.Vehicle
	repo := &mockVehicleRepo{
		createFn: func(ctx context.Context, vehicle *model.Vehicle) error {
			saved = vehicle
			return nil
		},
	}

	svc := NewService(repo, &mockSanitizer{}, &mockSSRFGuard{})

	vehicle, err := svc.Create(ctx, validInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if vehicle.ID == "" {
		t.Error("expected non-empty vehicle ID")
	}
	if vehicle.Status != model.VehicleAvailable {
		t.Errorf("status = %q, want %q", vehicle.Status, model.VehicleAvailable)
	}
	if saved == nil {
		t.Fatal("expected vehicle to be saved")
	}
	if saved.SellerID != "seller-1" {
		t.Errorf("seller ID = %q, want %q", saved.SellerID, "seller-1")
	}
}

func TestCreate_SanitizesDescription(t *testing.T) {
	ctx := context.Background()

	var saved *model.Vehicle
	repo := &mockVehicleRepo{
		createFn: func(ctx context.Context, vehicle *model.Vehicle) error {
			saved = vehicle
			return nil
		},
	}
	sanitizer := &mockSanitizer{
		sanitizeFn: func(rawHTML string) string {
			return "<p>clean</p>"
		},
	}

	svc := NewService(repo, sanitizer, &mockSSRFGuard{})

	input := validInput()
	input.Description = `<p>Único dono</p><script>alert(1)</script>`
	if _, err := svc.Create(ctx, input); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// サニタイズ後の説明文が保存されること
	if saved.Description != "<p>clean</p>" {
		t.Errorf("description = %q, want %q", saved.Description, "<p>clean</p>")
	}
}

func TestCreate_UnsafePhotoURL_ReturnsInvalidURL(t *testing.T) {
	ctx := context.Background()

	created := false
	repo := &mockVehicleRepo{
		createFn: func(ctx context.Context, vehicle *model.Vehicle) error {
			created = true
			return nil
		},
	}
	guard := &mockSSRFGuard{
		validateURLFn: func(rawURL string) error {
			return errors.New("blocked IP address: 169.254.169.254")
		},
	}

	svc := NewService(repo, &mockSanitizer{}, guard)

	input := validInput()
	input.PhotoURL = "http://169.254.169.254/photo.jpg"
	_, err := svc.Create(ctx, input)
	if err == nil {
		t.Fatal("expected error for unsafe photo URL")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.Code != model.ErrCodeInvalidURL {
		t.Errorf("error code = %q, want %q", apiErr.Code, model.ErrCodeInvalidURL)
	}
	if created {
		t.Error("vehicle must not be created when URL validation fails")
	}
}

func TestCreate_EmptyPhotoURL_SkipsValidation(t *testing.T) {
	ctx := context.Background()

	validations := 0
	guard := &mockSSRFGuard{
		validateURLFn: func(rawURL string) error {
			validations++
			return nil
		},
	}

	svc := NewService(&mockVehicleRepo{}, &mockSanitizer{}, guard)

	if _, err := svc.Create(ctx, validInput()); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if validations != 0 {
		t.Errorf("URL validations = %d, want 0", validations)
	}
}

func TestCreate_InvalidFields_ReturnsInvalidVehicle(t *testing.T) {
	ctx := context.Background()
	svc := NewService(&mockVehicleRepo{}, &mockSanitizer{}, &mockSSRFGuard{})

	tests := []struct {
		name   string
		modify func(*CreateInput)
	}{
		{"missing seller ID", func(i *CreateInput) { i.SellerID = "" }},
		{"missing make", func(i *CreateInput) { i.Make = "" }},
		{"missing model", func(i *CreateInput) { i.Model = "" }},
		{"year too old", func(i *CreateInput) { i.Year = 1850 }},
		{"year in far future", func(i *CreateInput) { i.Year = time.Now().Year() + 5 }},
		{"negative mileage", func(i *CreateInput) { i.Mileage = -1 }},
		{"zero price", func(i *CreateInput) { i.Price = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.modify(&input)

			_, err := svc.Create(ctx, input)
			if err == nil {
				t.Fatal("expected validation error")
			}

			var apiErr *model.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected APIError, got %T", err)
			}
			if apiErr.Code != model.ErrCodeInvalidVehicle {
				t.Errorf("error code = %q, want %q", apiErr.Code, model.ErrCodeInvalidVehicle)
			}
		})
	}
}

func TestGetByID_NotFound_ReturnsVehicleNotFound(t *testing.T) {
	ctx := context.Background()

	repo := &mockVehicleRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Vehicle, error) {
			return nil, nil
		},
	}

	svc := NewService(repo, &mockSanitizer{}, &mockSSRFGuard{})

	_, err := svc.GetByID(ctx, "no-such-vehicle")
	if err == nil {
		t.Fatal("expected error for unknown vehicle")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.Code != model.ErrCodeVehicleNotFound {
		t.Errorf("error code = %q, want %q", apiErr.Code, model.ErrCodeVehicleNotFound)
	}
}

func TestListAvailable_PassesFilter(t *testing.T) {
	ctx := context.Background()

	var gotFilter model.VehicleFilter
	repo := &mockVehicleRepo{
		listAvailableFn: func(ctx context.Context, filter model.VehicleFilter) ([]*model.Vehicle, error) {
			gotFilter = filter
			return []*model.Vehicle{{ID: "v-1"}}, nil
		},
	}

	svc := NewService(repo, &mockSanitizer{}, &mockSSRFGuard{})

	filter := model.VehicleFilter{Make: "Toyota", MinPrice: 50000}
	vehicles, err := svc.ListAvailable(ctx, filter)
	if err != nil {
		t.Fatalf("ListAvailable() error = %v", err)
	}

	if len(vehicles) != 1 {
		t.Fatalf("len(vehicles) = %d, want 1", len(vehicles))
	}
	if gotFilter != filter {
		t.Errorf("filter = %+v, want %+v", gotFilter, filter)
	}
}
