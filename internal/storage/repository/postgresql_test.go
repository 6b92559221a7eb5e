package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackmystartup/platform/internal/models"
)

func TestStorage_RegisterUser(t *testing.T) {
	type args struct {
		ctx  context.Context
		user models.User
	}

	tests := []struct {
		name    string
		args    args
		wantErr bool
		setup   func(t *testing.T, factory *TestDataFactory)
	}{
		{
			name: "successful register investor",
			args: args{
				ctx: context.Background(),
				user: models.User{
					Email:            "inv@example.com",
					Name:             "Investor One",
					PasswordHash:     "hashedpassword",
					Role:             models.RoleInvestor,
					RegistrationDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				},
			},
			wantErr: false,
			setup:   func(_ *testing.T, _ *TestDataFactory) {},
		},
		{
			name: "successful register startup with codes",
			args: args{
				ctx: context.Background(),
				user: models.User{
					Email:            "founder@acme.io",
					Name:             "Founder",
					PasswordHash:     "hashedpassword",
					Role:             models.RoleStartup,
					StartupName:      "Acme",
					CACode:           "CA-001",
					CSCode:           "CS-001",
					RegistrationDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				},
			},
			wantErr: false,
			setup:   func(_ *testing.T, _ *TestDataFactory) {},
		},
		{
			name: "register user with duplicate email",
			args: args{
				ctx: context.Background(),
				user: models.User{
					Email:            "inv@example.com",
					Name:             "Second Investor",
					PasswordHash:     "hashedpassword2",
					Role:             models.RoleInvestor,
					RegistrationDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				},
			},
			wantErr: true,
			setup: func(t *testing.T, factory *TestDataFactory) {
				factory.CreateUser(t, "inv@example.com", "Investor One", "hashedpassword", models.RoleInvestor)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, cleanup := setupTestDatabase(t)
			defer cleanup()

			factory := NewTestDataFactory(storage)
			tt.setup(t, factory)

			gotUID, err := storage.RegisterUser(tt.args.ctx, tt.args.user)

			if tt.wantErr {
				require.Error(t, err)
				assert.Empty(t, gotUID)
				return
			}
			require.NoError(t, err)
			require.NotEmpty(t, gotUID)

			verification := NewTestVerification(storage)
			verification.VerifyUserExists(t, gotUID)
		})
	}
}

func TestStorage_GetUserByEmail(t *testing.T) {
	type args struct {
		ctx   context.Context
		email string
	}

	tests := []struct {
		name    string
		args    args
		want    *models.User
		wantErr bool
		setup   func(t *testing.T, factory *TestDataFactory) string
	}{
		{
			name: "successful get user by email",
			args: args{
				ctx:   context.Background(),
				email: "inv@example.com",
			},
			want: &models.User{
				Email:        "inv@example.com",
				Name:         "Investor One",
				PasswordHash: "hashedpassword",
				Role:         models.RoleInvestor,
				InvestorCode: "INV-001",
			},
			wantErr: false,
			setup: func(t *testing.T, factory *TestDataFactory) string {
				return factory.CreateUserWithCodes(t, "inv@example.com", "Investor One",
					models.RoleInvestor, "INV-001", "", "", "")
			},
		},
		{
			name: "get non-existing user",
			args: args{
				ctx:   context.Background(),
				email: "nobody@example.com",
			},
			want:    nil,
			wantErr: true,
			setup:   func(_ *testing.T, _ *TestDataFactory) string { return "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, cleanup := setupTestDatabase(t)
			defer cleanup()

			factory := NewTestDataFactory(storage)
			userUID := tt.setup(t, factory)
			if tt.want != nil {
				tt.want.UID = userUID
			}

			got, err := storage.GetUserByEmail(tt.args.ctx, tt.args.email)

			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrNotFound))
				assert.Nil(t, got)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, got)

			assert.Equal(t, tt.want.UID, got.UID)
			assert.Equal(t, tt.want.Email, got.Email)
			assert.Equal(t, tt.want.Name, got.Name)
			assert.Equal(t, tt.want.PasswordHash, got.PasswordHash)
			assert.Equal(t, tt.want.Role, got.Role)
			assert.Equal(t, tt.want.InvestorCode, got.InvestorCode)
			assert.Nil(t, got.EmailConfirmedAt)
		})
	}
}

func TestStorage_ConfirmEmail(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userUID := factory.CreateUser(t, "inv@example.com", "Investor One", "hashedpassword", models.RoleInvestor)

	ctx := context.Background()
	require.NoError(t, storage.ConfirmEmail(ctx, userUID))

	got, err := storage.GetUser(ctx, userUID)
	require.NoError(t, err)
	require.NotNil(t, got.EmailConfirmedAt)
	firstConfirmed := *got.EmailConfirmedAt

	// Повторное подтверждение не меняет исходную отметку времени
	require.NoError(t, storage.ConfirmEmail(ctx, userUID))

	got, err = storage.GetUser(ctx, userUID)
	require.NoError(t, err)
	require.NotNil(t, got.EmailConfirmedAt)
	assert.True(t, firstConfirmed.Equal(*got.EmailConfirmedAt))
}

func TestStorage_UpdateVerificationDocuments(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userUID := factory.CreateUser(t, "ca@example.com", "Accountant", "hashedpassword", models.RoleCA)

	ctx := context.Background()
	err := storage.UpdateVerificationDocuments(ctx, userUID,
		"https://files.example.com/gov-id.pdf", "https://files.example.com/license.pdf")
	require.NoError(t, err)

	got, err := storage.GetUser(ctx, userUID)
	require.NoError(t, err)
	assert.Equal(t, "https://files.example.com/gov-id.pdf", got.GovernmentIDURL)
	assert.Equal(t, "https://files.example.com/license.pdf", got.LicenseURL)
	assert.True(t, got.ProfileComplete)

	verification := NewTestVerification(storage)
	verification.VerifyProfileComplete(t, userUID, true)
}

func TestStorage_UpdatePassword(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userUID := factory.CreateUser(t, "inv@example.com", "Investor", "old-hash", models.RoleInvestor)

	ctx := context.Background()
	err := storage.UpdatePassword(ctx, userUID, "new-hash")
	require.NoError(t, err)

	got, err := storage.GetUser(ctx, userUID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", got.PasswordHash)

	// Несуществующий пользователь
	err = storage.UpdatePassword(ctx, "00000000-0000-0000-0000-000000000000", "new-hash")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestStorage_CreateStartup(t *testing.T) {
	type args struct {
		ctx     context.Context
		startup models.Startup
	}

	tests := []struct {
		name    string
		args    args
		wantErr bool
		setup   func(t *testing.T, factory *TestDataFactory)
	}{
		{
			name: "successful create startup",
			args: args{
				ctx: context.Background(),
				startup: models.Startup{
					Name:             "Acme",
					Sector:           "Fintech",
					ComplianceStatus: models.CompliancePending,
					CountryCode:      "IN",
					CompanyType:      "Private Limited",
					RegistrationDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				},
			},
			wantErr: false,
			setup:   func(_ *testing.T, _ *TestDataFactory) {},
		},
		{
			name: "create startup with duplicate name",
			args: args{
				ctx: context.Background(),
				startup: models.Startup{
					Name:             "Acme",
					ComplianceStatus: models.CompliancePending,
					RegistrationDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				},
			},
			wantErr: true,
			setup: func(t *testing.T, factory *TestDataFactory) {
				factory.CreateStartup(t, "Acme", "Fintech", "IN", "Private Limited")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, cleanup := setupTestDatabase(t)
			defer cleanup()

			factory := NewTestDataFactory(storage)
			tt.setup(t, factory)

			gotID, err := storage.CreateStartup(tt.args.ctx, tt.args.startup)

			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Greater(t, gotID, 0)

			got, err := storage.GetStartup(tt.args.ctx, gotID)
			require.NoError(t, err)
			assert.Equal(t, tt.args.startup.Name, got.Name)
			assert.Equal(t, tt.args.startup.Sector, got.Sector)
			assert.Equal(t, tt.args.startup.ComplianceStatus, got.ComplianceStatus)
		})
	}
}

func TestStorage_FindStartupByName(t *testing.T) {
	type args struct {
		ctx  context.Context
		name string
	}

	tests := []struct {
		name    string
		args    args
		wantErr bool
		setup   func(t *testing.T, factory *TestDataFactory)
	}{
		{
			name: "successful find by name",
			args: args{
				ctx:  context.Background(),
				name: "Acme",
			},
			wantErr: false,
			setup: func(t *testing.T, factory *TestDataFactory) {
				factory.CreateStartup(t, "Acme", "Fintech", "IN", "Private Limited")
			},
		},
		{
			name: "find non-existing startup",
			args: args{
				ctx:  context.Background(),
				name: "Ghost",
			},
			wantErr: true,
			setup:   func(_ *testing.T, _ *TestDataFactory) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, cleanup := setupTestDatabase(t)
			defer cleanup()

			factory := NewTestDataFactory(storage)
			tt.setup(t, factory)

			got, err := storage.FindStartupByName(tt.args.ctx, tt.args.name)

			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrNotFound))
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, tt.args.name, got.Name)
		})
	}
}

func TestStorage_ListStartupsByAssignment(t *testing.T) {
	type args struct {
		ctx  context.Context
		role models.Role
		code string
	}

	tests := []struct {
		name      string
		args      args
		wantNames []string
		setup     func(t *testing.T, factory *TestDataFactory)
	}{
		{
			name: "list startups assigned to CA",
			args: args{
				ctx:  context.Background(),
				role: models.RoleCA,
				code: "CA-001",
			},
			wantNames: []string{"Acme", "Globex"},
			setup: func(t *testing.T, factory *TestDataFactory) {
				factory.CreateStartupWithAssignment(t, "Acme", "CA-001", "CS-001")
				factory.CreateStartupWithAssignment(t, "Globex", "CA-001", "")
				factory.CreateStartupWithAssignment(t, "Initech", "CA-002", "CS-001")
			},
		},
		{
			name: "CS assignment uses its own column",
			args: args{
				ctx:  context.Background(),
				role: models.RoleCS,
				code: "CS-001",
			},
			wantNames: []string{"Acme", "Initech"},
			setup: func(t *testing.T, factory *TestDataFactory) {
				factory.CreateStartupWithAssignment(t, "Acme", "CA-001", "CS-001")
				factory.CreateStartupWithAssignment(t, "Globex", "CA-001", "")
				factory.CreateStartupWithAssignment(t, "Initech", "CA-002", "CS-001")
			},
		},
		{
			name: "no startups for unknown code",
			args: args{
				ctx:  context.Background(),
				role: models.RoleCA,
				code: "CA-999",
			},
			wantNames: nil,
			setup: func(t *testing.T, factory *TestDataFactory) {
				factory.CreateStartupWithAssignment(t, "Acme", "CA-001", "CS-001")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, cleanup := setupTestDatabase(t)
			defer cleanup()

			factory := NewTestDataFactory(storage)
			tt.setup(t, factory)

			got, err := storage.ListStartupsByAssignment(tt.args.ctx, tt.args.role, tt.args.code)
			require.NoError(t, err)

			var names []string
			for _, st := range got {
				names = append(names, st.Name)
			}
			assert.Equal(t, tt.wantNames, names)
		})
	}
}

func TestStorage_ReplaceFounders(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	startupID := factory.CreateStartup(t, "Acme", "Fintech", "IN", "Private Limited")

	ctx := context.Background()
	first := []models.Founder{
		{Name: "Alice", Email: "alice@acme.io", Shares: 6000, EquityPercent: 60},
		{Name: "Bob", Email: "bob@acme.io", Shares: 4000, EquityPercent: 40},
	}
	require.NoError(t, storage.ReplaceFounders(ctx, startupID, first))

	// Повторная запись полностью заменяет предыдущий список
	second := []models.Founder{
		{Name: "Carol", Email: "carol@acme.io", Shares: 5000, EquityPercent: 50},
		{Name: "Alice", Email: "alice@acme.io", Shares: 3000, EquityPercent: 30},
		{Name: "Dave", Email: "dave@acme.io", Shares: 2000, EquityPercent: 20},
	}
	require.NoError(t, storage.ReplaceFounders(ctx, startupID, second))

	got, err := storage.ListFounders(ctx, startupID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, second, got)

	verification := NewTestVerification(storage)
	verification.VerifyFounderCount(t, startupID, 3)
}

func TestStorage_UpsertFundraisingDetails(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	startupID := factory.CreateStartup(t, "Acme", "Fintech", "IN", "Private Limited")

	ctx := context.Background()
	firstID, err := storage.UpsertFundraisingDetails(ctx, models.FundraisingDetails{
		StartupID:   startupID,
		Active:      true,
		FundingType: "Seed",
		AskAmount:   500000,
		AskEquity:   10,
	})
	require.NoError(t, err)
	require.Greater(t, firstID, 0)

	// Обновление условий раунда не создает вторую запись
	secondID, err := storage.UpsertFundraisingDetails(ctx, models.FundraisingDetails{
		StartupID:    startupID,
		Active:       true,
		FundingType:  "Series A",
		AskAmount:    2000000,
		AskEquity:    15,
		PitchDeckURL: "https://files.example.com/deck.pdf",
	})
	require.NoError(t, err)
	assert.Equal(t, firstID, secondID)

	var fundingType string
	var askAmount float64
	err = storage.DB.QueryRow(
		"SELECT funding_type, ask_amount FROM fundraising_details WHERE startup_id = $1",
		startupID).Scan(&fundingType, &askAmount)
	require.NoError(t, err)
	assert.Equal(t, "Series A", fundingType)
	assert.InDelta(t, 2000000.0, askAmount, 0.001)
}

func TestCheckDatabaseReady(t *testing.T) {
	tests := []struct {
		name         string
		setup        func(t *testing.T, storage *Storage)
		wantError    bool
		errorContain string
	}{
		{
			name: "table exists",
			setup: func(_ *testing.T, _ *Storage) {
				// Таблица уже создается в setupTestDatabase
			},
			wantError: false,
		},
		{
			name: "table missing",
			setup: func(t *testing.T, storage *Storage) {
				_, err := storage.DB.Exec(`DROP TABLE IF EXISTS startups CASCADE`)
				require.NoError(t, err)
			},
			wantError:    true,
			errorContain: "missing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, cleanup := setupTestDatabase(t)
			defer cleanup()
			tt.setup(t, storage)

			err := storage.CheckDatabaseReady(context.Background())
			if tt.wantError {
				require.Error(t, err)
				if tt.errorContain != "" {
					assert.Contains(t, err.Error(), tt.errorContain)
				}
			} else {
				require.NoError(t, err)
			}
		})
	}
}
