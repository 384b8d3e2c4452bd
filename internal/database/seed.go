package database

import (
	"log"
	"time"

	"github.com/talentops/Interview-Autopilot/internal/models"
	"gorm.io/gorm"
)

// SeedIfEmpty inserts a demo panel, one candidate and a few busy blocks so
// the propose flow has something to chew on right after first boot.
func SeedIfEmpty(db *gorm.DB, tz *time.Location) {
	var count int64
	db.Model(&models.User{}).Count(&count)
	if count > 0 {
		return
	}

	log.Println("🌱 Empty database detected. Seeding demo data...")

	users := []models.User{
		{Name: "Ivan Engineer", Email: "ivan.engineer@example.com", Role: "engineer", SlackHandle: "@ivan"},
		{Name: "Olga Engineer", Email: "olga.engineer@example.com", Role: "engineer", SlackHandle: "@olga"},
		{Name: "Max TechLead", Email: "max.techlead@example.com", Role: "tech_lead", SlackHandle: "@max"},
	}
	if err := db.Create(&users).Error; err != nil {
		log.Printf("⚠️ Seed failed (users): %v", err)
		return
	}

	cand := models.Candidate{
		Name:       "Test Candidate",
		Email:      "candidate@example.com",
		ResumeText: "Synthetic demo resume.\n- 5 years of Go\n- Backend services, SQL\n- System design (basic)\n",
	}
	if err := db.Create(&cand).Error; err != nil {
		log.Printf("⚠️ Seed failed (candidate): %v", err)
		return
	}

	base := time.Now().In(tz).Truncate(time.Hour).Add(2 * time.Hour)
	blocks := []models.CalendarBlock{
		{UserID: users[0].ID, Start: base.Add(1 * time.Hour), End: base.Add(2 * time.Hour), Title: "Focus"},
		{UserID: users[1].ID, Start: base.Add(2 * time.Hour), End: base.Add(3 * time.Hour), Title: "Meeting"},
		{UserID: users[2].ID, Start: base.Add(90 * time.Minute), End: base.Add(150 * time.Minute), Title: "1:1"},
	}
	if err := db.Create(&blocks).Error; err != nil {
		log.Printf("⚠️ Seed failed (calendar): %v", err)
		return
	}

	log.Printf("✅ Seeded %d users, 1 candidate, %d busy blocks", len(users), len(blocks))
}
