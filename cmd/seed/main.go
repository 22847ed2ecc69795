package main

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"wastetrack/internal/database"
	"wastetrack/internal/domain"
)

// Seed accounts are development fixtures. The hash cost matches the
// credential policy so seeded rows look exactly like production rows.
const bcryptCost = 12

func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "wastetrack.db"
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running migrations...")
	if err := database.Migrate(db); err != nil {
		log.Fatal("Migrate failed:", err)
	}

	// Cleanup old data (in safe order to avoid foreign key errors)
	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM waste_logs")
	db.Exec("DELETE FROM inventory_items")
	db.Exec("DELETE FROM sessions")
	db.Exec("DELETE FROM login_attempts")
	db.Exec("DELETE FROM rate_limit_counters")
	db.Exec("DELETE FROM users")
	db.Exec("DELETE FROM branches")

	// ================== BRANCHES ==================
	log.Println("Creating branches...")
	branchNames := []string{"Центральный склад", "Филиал Алматы", "Филиал Астана"}
	branches := make([]domain.Branch, 0, len(branchNames))
	for i, name := range branchNames {
		branch := domain.Branch{
			Name:    name,
			Address: fmt.Sprintf("ул. Складская %d", i+1),
		}
		db.Create(&branch)
		branches = append(branches, branch)
	}

	// ================== USERS ==================
	log.Println("Creating users...")

	adminHash, _ := bcrypt.GenerateFromPassword([]byte("admin123"), bcryptCost)
	admin := domain.User{
		Email:        "admin@wastetrack.kz",
		PasswordHash: string(adminHash),
		Role:         domain.RoleSuperAdmin,
		Name:         "Главный администратор",
	}
	db.Create(&admin)
	log.Println("Super admin created: admin@wastetrack.kz / admin123")

	branchAdmins := make([]domain.User, 0, len(branches))
	for i, branch := range branches {
		hash, _ := bcrypt.GenerateFromPassword([]byte("branch123"), bcryptCost)
		branchID := branch.ID
		user := domain.User{
			Email:        fmt.Sprintf("branch%d@wastetrack.kz", i+1),
			PasswordHash: string(hash),
			Role:         domain.RoleBranchAdmin,
			BranchID:     &branchID,
			Name:         fmt.Sprintf("Администратор филиала %d", i+1),
		}
		db.Create(&user)
		branchAdmins = append(branchAdmins, user)
	}

	// ================== INVENTORY ==================
	log.Println("Creating inventory items...")
	type itemSpec struct {
		name      string
		unit      string
		costCents int64
	}
	catalog := []itemSpec{
		{"Молоко", "л", 45000},
		{"Кофе в зёрнах", "кг", 980000},
		{"Сироп ванильный", "шт", 210000},
		{"Стаканы бумажные", "шт", 3500},
		{"Круассаны", "шт", 60000},
	}

	items := make([]domain.InventoryItem, 0, len(branches)*len(catalog))
	for i, branch := range branches {
		creator := branchAdmins[i]
		for _, spec := range catalog {
			item := domain.InventoryItem{
				BranchID:      branch.ID,
				Name:          spec.name,
				Unit:          spec.unit,
				Quantity:      10 + float64(rand.Intn(90)),
				UnitCostCents: spec.costCents,
				CreatedBy:     creator.ID,
			}
			db.Create(&item)
			items = append(items, item)
		}
	}

	// ================== WASTE LOGS ==================
	log.Println("Creating waste logs...")
	reasons := []string{
		"Истёк срок годности",
		"Разлив при приготовлении",
		"Брак поставки",
		"Повреждение упаковки",
	}
	for i := 0; i < 25; i++ {
		item := items[rand.Intn(len(items))]
		recorder := branchAdmins[0]
		for _, admin := range branchAdmins {
			if admin.BranchID != nil && *admin.BranchID == item.BranchID {
				recorder = admin
				break
			}
		}

		occurred := time.Now().
			AddDate(0, 0, -rand.Intn(14)).
			Truncate(time.Hour).
			Add(-time.Duration(rand.Intn(10)) * time.Hour)

		wl := domain.WasteLog{
			BranchID:   item.BranchID,
			ItemID:     item.ID,
			Quantity:   0.5 + float64(rand.Intn(5)),
			Reason:     reasons[rand.Intn(len(reasons))],
			RecordedBy: recorder.ID,
			OccurredAt: occurred,
		}
		db.Create(&wl)
	}

	log.Println("Seed completed!")
	log.Println("Test accounts:")
	log.Println("Super admin: admin@wastetrack.kz / admin123")
	log.Println("Branch admins: branch1@wastetrack.kz ... branch3@wastetrack.kz / branch123")
}
