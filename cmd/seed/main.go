// Command seed resets the database to a small demo data set: one user per
// role, a handful of assets, PM schedules and pending requests.
package main

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/maintenance-tracker/internal/auth"
	"github.com/ukydev/maintenance-tracker/internal/config"
	"github.com/ukydev/maintenance-tracker/internal/db"
	"github.com/ukydev/maintenance-tracker/internal/events"
	"github.com/ukydev/maintenance-tracker/internal/models"
	"github.com/ukydev/maintenance-tracker/internal/summary"
	"github.com/ukydev/maintenance-tracker/internal/tracker"
)

const demoPassword = "password123"

type seedUser struct {
	Username string
	Name     string
	Role     models.Role
}

type seedSchedule struct {
	AssetCode string
	Frequency models.Frequency
	DueInDays int
	Tasks     []string
}

type seedRequest struct {
	Submitter string
	AssetCode string
	Urgency   models.Urgency
	Text      string
}

var users = []seedUser{
	{"manager", "Maria Santos", models.RoleManager},
	{"tech1", "Jose Reyes", models.RoleTechnician},
	{"tech2", "Ana Cruz", models.RoleTechnician},
	{"employee", "Carlo Mendoza", models.RoleEmployee},
}

var assets = []models.CreateAssetInput{
	{AssetCode: "EQP-001", Name: "Air Compressor Unit", Category: models.CategoryEquipment, Location: "Production Floor A", PurchaseCost: 85000},
	{AssetCode: "EQP-002", Name: "Industrial Generator", Category: models.CategoryEquipment, Location: "Power House", PurchaseCost: 450000},
	{AssetCode: "MCH-001", Name: "CNC Milling Machine", Category: models.CategoryMachine, Location: "Machine Shop", PurchaseCost: 1200000},
	{AssetCode: "MCH-002", Name: "Hydraulic Press", Category: models.CategoryMachine, Location: "Machine Shop", PurchaseCost: 650000},
	{AssetCode: "FUR-001", Name: "Conference Table", Category: models.CategoryFurniture, Location: "Admin Building", PurchaseCost: 35000},
}

var schedules = []seedSchedule{
	{"EQP-001", models.FrequencyMonthly, 7, []string{"Drain condensate", "Check belt tension", "Replace intake filter"}},
	{"EQP-002", models.FrequencyWeekly, 2, []string{"Run under load for 30 minutes", "Check oil level"}},
	{"MCH-001", models.FrequencyQuarterly, 30, []string{"Lubricate ways", "Calibrate spindle"}},
}

var requests = []seedRequest{
	{"employee", "MCH-002", models.UrgencyImmediately, "Hydraulic fluid leaking under the press"},
	{"employee", "EQP-001", models.UrgencyOnOccasion, "Compressor cycles more often than usual"},
}

func main() {
	cfg := config.Load()
	cfg.SetupLogging()

	client, err := db.ConnectMongo(cfg.Mongo.URI)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	store := db.NewStore(client, cfg.Mongo.Database)
	ctx := context.Background()
	defer func() {
		if err := store.Disconnect(ctx); err != nil {
			log.WithError(err).Warn("Failed to disconnect from MongoDB")
		}
	}()

	if err := seed(ctx, store, auth.NewService(cfg.Auth), time.Now().UTC()); err != nil {
		log.WithError(err).Fatal("Seeding failed")
	}
	log.WithField("database", cfg.Mongo.Database).Info("Seed complete")
}

func seed(ctx context.Context, store *db.Store, authService *auth.Service, now time.Time) error {
	for _, name := range []string{
		db.RequestsCollection, db.AssetsCollection, db.SchedulesCollection,
		db.ReportsCollection, db.UsersCollection, db.ActivityCollection,
	} {
		if err := store.Database.Collection(name).Drop(ctx); err != nil {
			return fmt.Errorf("drop %s: %w", name, err)
		}
	}
	if err := store.Counters.Reset(ctx); err != nil {
		return fmt.Errorf("reset counters: %w", err)
	}
	if err := store.EnsureIndexes(ctx); err != nil {
		return err
	}

	hash, err := authService.HashPassword(demoPassword)
	if err != nil {
		return err
	}
	actors := map[string]models.Actor{}
	var technicians []*models.User
	for _, u := range users {
		created, err := store.Users.InsertUser(ctx, models.User{
			Username:     u.Username,
			Email:        u.Username + "@example.com",
			PasswordHash: hash,
			Role:         u.Role,
			Name:         u.Name,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			return fmt.Errorf("user %s: %w", u.Username, err)
		}
		actors[u.Username] = created.Actor()
		if u.Role == models.RoleTechnician {
			technicians = append(technicians, created)
		}
	}
	log.WithField("count", len(users)).Info("Users created")

	svc := tracker.NewFromStore(store, &events.ActivityPublisher{Store: store.Activity}, summary.Disabled{}, time.Second)
	manager := actors["manager"]

	for _, in := range assets {
		in.PurchaseDate = now.AddDate(-2, 0, 0)
		if _, err := svc.CreateAsset(ctx, manager, in); err != nil {
			return fmt.Errorf("asset %s: %w", in.AssetCode, err)
		}
	}
	log.WithField("count", len(assets)).Info("Assets created")

	for i, s := range schedules {
		tech := technicians[i%len(technicians)]
		_, err := svc.CreatePMSchedule(ctx, manager, models.CreatePMScheduleInput{
			AssetCode:    s.AssetCode,
			Description:  fmt.Sprintf("%s preventive maintenance", s.Frequency),
			Frequency:    s.Frequency,
			NextDueDate:  now.Truncate(24*time.Hour).AddDate(0, 0, s.DueInDays),
			TechnicianID: tech.ID.Hex(),
			Tasks:        s.Tasks,
		})
		if err != nil {
			return fmt.Errorf("schedule for %s: %w", s.AssetCode, err)
		}
	}
	log.WithField("count", len(schedules)).Info("PM schedules created")

	for _, r := range requests {
		req, err := svc.SubmitRequest(ctx, actors[r.Submitter], models.SubmitRequestInput{
			AssetCode:       r.AssetCode,
			WorkDescription: r.Text,
			Urgency:         r.Urgency,
		})
		if err != nil {
			return fmt.Errorf("request for %s: %w", r.AssetCode, err)
		}
		log.WithFields(log.Fields{"request": req.RequestID, "tswr": req.TSWRNo}).Info("Request submitted")
	}
	return nil
}
