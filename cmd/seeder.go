package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlxDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlxDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to open gorm: %v", err)
		}

		if clearData {
			for _, table := range []string{"notifications", "appointments", "book_ownerships", "enrollments", "transactions", "books", "courses", "user_permissions", "permissions", "users"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

		seedUser := func(email, name, role, locale string) int64 {
			var id int64
			row := db.Raw("SELECT id FROM users WHERE email = ?", email).Row()
			if err := row.Scan(&id); err == nil {
				fmt.Printf("user %s already exists\n", email)
				return id
			}
			if err := db.Raw(
				"INSERT INTO users (email, name, password_hash, role, locale, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, ?, true, now(), now()) RETURNING id",
				email, name, string(hash), role, locale,
			).Row().Scan(&id); err != nil {
				log.Fatalf("failed to insert user %s: %v", email, err)
			}
			fmt.Println("Seeded user:", email)
			return id
		}

		studentID := seedUser("talib@mail.com", "طالب تجريبي", "student", "ar")
		consultantID := seedUser("mustashar@mail.com", "مستشار تجريبي", "consultant", "ar")
		adminID := seedUser("admin@mail.com", "Admin", "admin", "en")
		_ = studentID

		permissions := []struct {
			Name string
			Desc string
		}{
			{"admin", "full administrator"},
			{"refund_transactions", "Can override transaction status"},
			{"view_all_transactions", "Can view any transaction"},
			{"manage_catalog", "Can create and edit courses and books"},
			{"consultant", "Consultant: manage own appointment schedule"},
		}

		permIDs := map[string]int64{}
		for _, p := range permissions {
			var pid int64
			row := db.Raw("SELECT id FROM permissions WHERE name = ?", p.Name).Row()
			if err := row.Scan(&pid); err != nil {
				if err := db.Raw(
					"INSERT INTO permissions (name, description, created_at) VALUES (?, ?, now()) RETURNING id",
					p.Name, p.Desc,
				).Row().Scan(&pid); err != nil {
					log.Fatalf("failed to insert permission %s: %v", p.Name, err)
				}
			}
			permIDs[p.Name] = pid
		}

		grant := func(userID int64, permName string) {
			var exists int
			row := db.Raw("SELECT 1 FROM user_permissions WHERE user_id = ? AND permission_id = ?", userID, permIDs[permName]).Row()
			if err := row.Scan(&exists); err == nil {
				return
			}
			if err := db.Exec(
				"INSERT INTO user_permissions (user_id, permission_id, created_at) VALUES (?, ?, now())",
				userID, permIDs[permName],
			).Error; err != nil {
				log.Fatalf("failed to grant %s: %v", permName, err)
			}
			fmt.Printf("Granted %s to user %d\n", permName, userID)
		}

		grant(adminID, "admin")
		grant(consultantID, "consultant")

		seedCourse := func(titleAr, titleEn string, price int64) {
			var exists int
			row := db.Raw("SELECT 1 FROM courses WHERE title_ar = ?", titleAr).Row()
			if err := row.Scan(&exists); err == nil {
				return
			}
			if err := db.Exec(
				"INSERT INTO courses (title_ar, title_en, price_halalas, consultant_id, is_published, created_at, updated_at) VALUES (?, ?, ?, ?, true, now(), now())",
				titleAr, titleEn, price, consultantID,
			).Error; err != nil {
				log.Fatalf("failed to insert course %s: %v", titleEn, err)
			}
			fmt.Println("Seeded course:", titleEn)
		}

		seedCourse("أساسيات التفكير المستقبلي", "Foundations of Futures Thinking", 19_900)
		seedCourse("مقدمة في الاستشراف", "Introduction to Foresight", 0)

		seedBook := func(titleAr, titleEn, fileKey string, price int64) {
			var exists int
			row := db.Raw("SELECT 1 FROM books WHERE title_ar = ?", titleAr).Row()
			if err := row.Scan(&exists); err == nil {
				return
			}
			if err := db.Exec(
				"INSERT INTO books (title_ar, title_en, author_name, price_halalas, file_key, is_published, created_at, updated_at) VALUES (?, ?, ?, ?, ?, true, now(), now())",
				titleAr, titleEn, "د. محمد العتيبي", price, fileKey,
			).Error; err != nil {
				log.Fatalf("failed to insert book %s: %v", titleEn, err)
			}
			fmt.Println("Seeded book:", titleEn)
		}

		seedBook("دليل بناء السيناريوهات", "Scenario Building Handbook", "books/scenario-handbook.pdf", 4_900)

		fmt.Println("Seeding complete")
	},
}
