// Command seed loads the starter salon catalog into an empty Postgres
// database. Run the server once first so the tables exist.
package main

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"

	"salon-server/config"
)

type catalogItem struct {
	Name        string
	Description string
	Price       decimal.Decimal
	ImageURL    string
}

var services = []catalogItem{
	{Name: "Creative Director Haircut", Description: "Consultation, wash, cut and finish with the creative director.", Price: decimal.NewFromInt(1500)},
	{Name: "Top Stylist Haircut", Description: "Wash, precision cut and blow-dry.", Price: decimal.NewFromInt(1200)},
	{Name: "Senior Stylist Haircut", Description: "Wash, cut and style.", Price: decimal.NewFromInt(900)},
	{Name: "Stylist Haircut", Description: "Cut and style.", Price: decimal.NewFromInt(800)},
	{Name: "Kid's Haircut", Description: "For children under 12.", Price: decimal.NewFromInt(700)},
	{Name: "Hair Spa", Description: "Deep conditioning treatment with scalp massage.", Price: decimal.NewFromInt(1800)},
	{Name: "Global Hair Colour", Description: "Single-process colour, root to tip.", Price: decimal.NewFromInt(3500)},
	{Name: "Classic Facial", Description: "Cleanse, exfoliate, mask and hydrate.", Price: decimal.NewFromInt(1400)},
}

var products = []catalogItem{
	{Name: "Argan Oil Hair Serum", Price: decimal.NewFromInt(650)},
	{Name: "Sulphate-Free Shampoo", Price: decimal.NewFromInt(480)},
	{Name: "Repair Conditioner", Price: decimal.NewFromInt(520)},
	{Name: "Heat Protect Spray", Price: decimal.NewFromInt(560)},
	{Name: "Matte Styling Clay", Price: decimal.NewFromInt(450)},
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}
	if err := config.Load(); err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	db, err := sql.Open("postgres", config.AppConfig.Database.PostgresDSN())
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		log.Fatal("Failed to ping database:", err)
	}
	log.Println("✅ Successfully connected to database")

	if err := seedServices(ctx, db); err != nil {
		log.Fatal("Failed to seed services:", err)
	}
	if err := seedProducts(ctx, db); err != nil {
		log.Fatal("Failed to seed products:", err)
	}
}

func tableEmpty(ctx context.Context, db *sql.DB, table string) (bool, error) {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count); err != nil {
		return false, err
	}
	if count > 0 {
		log.Printf("⚠️ %s already has %d rows. Skipping insertion.", table, count)
	}
	return count == 0, nil
}

func seedServices(ctx context.Context, db *sql.DB) error {
	empty, err := tableEmpty(ctx, db, "services")
	if err != nil || !empty {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now()
	for _, s := range services {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO services (id, name, description, price, image_url, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $6)`,
			uuid.NewString(), s.Name, s.Description, s.Price.StringFixed(2), s.ImageURL, now)
		if err != nil {
			return err
		}
		log.Printf("✅ Added service: %s", s.Name)
	}
	return tx.Commit()
}

func seedProducts(ctx context.Context, db *sql.DB) error {
	empty, err := tableEmpty(ctx, db, "products")
	if err != nil || !empty {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now()
	for _, p := range products {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO products (id, name, price, image_url, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $5)`,
			uuid.NewString(), p.Name, p.Price.StringFixed(2), p.ImageURL, now)
		if err != nil {
			return err
		}
		log.Printf("✅ Added product: %s", p.Name)
	}
	return tx.Commit()
}
