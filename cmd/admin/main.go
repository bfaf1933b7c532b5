package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"profiledeck/internal/config"
	"profiledeck/internal/database"
	"profiledeck/internal/deck"
)

// Seeds a starter theme and an optional demo profile so a fresh deployment
// has something to render.
func main() {
	var (
		themeName   = flag.String("theme-name", "Classic", "name of the starter theme to seed")
		withProfile = flag.Bool("with-demo-profile", false, "also seed a demo profile")
		dbHost      = flag.String("db-host", "", "database host (defaults to DATABASE_HOST)")
		dbPort      = flag.Int("db-port", 0, "database port (defaults to DATABASE_PORT)")
		dbName      = flag.String("db-name", "", "database name (defaults to POSTGRES_DB)")
		dbUser      = flag.String("db-user", "", "database user (defaults to POSTGRES_USER)")
		dbPass      = flag.String("db-password", "", "database password (defaults to POSTGRES_PASSWORD)")
		sslMode     = flag.String("db-sslmode", "", "database sslmode (defaults to DATABASE_SSLMODE)")
	)
	flag.Parse()

	name := strings.TrimSpace(*themeName)
	if name == "" {
		log.Fatal("missing required flag: --theme-name")
	}

	dbCfg, err := loadDatabaseConfig(*dbHost, *dbPort, *dbName, *dbUser, *dbPass, *sslMode)
	if err != nil {
		log.Fatalf("load database config: %v", err)
	}

	db, err := database.InitDatabase(dbCfg)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("auto migrate: %v", err)
	}

	var existing database.Theme
	switch err := db.Where("name = ?", name).First(&existing).Error; {
	case err == nil:
		log.Fatalf("theme %q already exists", name)
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		log.Fatalf("query theme: %v", err)
	}

	theme := database.Theme{
		Name:        name,
		Description: "Three slide starter layout",
		IsActive:    true,
	}
	if err := db.Create(&theme).Error; err != nil {
		log.Fatalf("create theme: %v", err)
	}

	if err := seedStarterElements(db, theme.ID); err != nil {
		log.Fatalf("seed elements: %v", err)
	}
	fmt.Printf("seeded theme %q (id %d)\n", name, theme.ID)

	if *withProfile {
		profile := database.Profile{
			FirstName:  "Jordan",
			Age:        27,
			Location:   "Portland",
			Occupation: "Illustrator",
			Education:  "BFA, PNCA",
			Interests:  "hiking, film photography, ramen",
			Bio:        "Weekend trail runner who sketches strangers on the bus.",
		}
		if err := db.Create(&profile).Error; err != nil {
			log.Fatalf("create demo profile: %v", err)
		}
		fmt.Printf("seeded demo profile (id %d)\n", profile.ID)
	}
}

type starterElement struct {
	slide   int
	typ     deck.ElementType
	content string
	geom    deck.GeometryPatch
	style   deck.StyleBag
}

func seedStarterElements(db *gorm.DB, themeID uint) error {
	f := func(v float64) *float64 { return &v }

	elements := []starterElement{
		{1, deck.ElementImage, "", deck.GeometryPatch{X: f(60), Y: f(120), Width: f(840), Height: f(840)}, nil},
		{1, deck.ElementText, "{firstName}, {age}", deck.GeometryPatch{X: f(980), Y: f(200), Width: f(860), Height: f(140)},
			deck.StyleBag{"fontSize": "64px", "fontWeight": "bold"}},
		{1, deck.ElementText, "{location}", deck.GeometryPatch{X: f(980), Y: f(360), Width: f(860), Height: f(80)},
			deck.StyleBag{"fontSize": "32px", "color": "#475569"}},
		{1, deck.ElementText, "{occupation}", deck.GeometryPatch{X: f(980), Y: f(460), Width: f(860), Height: f(80)},
			deck.StyleBag{"fontSize": "32px", "color": "#475569"}},
		{2, deck.ElementImage, "", deck.GeometryPatch{X: f(1020), Y: f(120), Width: f(840), Height: f(840)}, nil},
		{2, deck.ElementContainer, "", deck.GeometryPatch{X: f(60), Y: f(120), Width: f(880), Height: f(840)}, nil},
		{2, deck.ElementText, "{education}", deck.GeometryPatch{X: f(120), Y: f(220), Width: f(760), Height: f(100)},
			deck.StyleBag{"fontSize": "36px"}},
		{2, deck.ElementText, "{interests}", deck.GeometryPatch{X: f(120), Y: f(380), Width: f(760), Height: f(400)},
			deck.StyleBag{"fontSize": "28px", "color": "#334155"}},
		{3, deck.ElementImage, "", deck.GeometryPatch{X: f(60), Y: f(120), Width: f(840), Height: f(840)}, nil},
		{3, deck.ElementText, "{bio}", deck.GeometryPatch{X: f(980), Y: f(200), Width: f(860), Height: f(680)},
			deck.StyleBag{"fontSize": "32px", "lineHeight": "1.5"}},
	}

	for _, def := range elements {
		el, err := deck.NewElement(themeID, def.slide, def.typ, def.content)
		if err != nil {
			return err
		}
		geometry, err := el.Geometry.Apply(def.geom)
		if err != nil {
			return err
		}
		el.Geometry = geometry
		if len(def.style) > 0 {
			el.Style = el.Style.Merge(def.style)
		}
		row, err := database.FromDeckElement(el)
		if err != nil {
			return err
		}
		if err := db.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

func loadDatabaseConfig(host string, port int, name, user, password, sslmode string) (config.DatabaseConfig, error) {
	if strings.TrimSpace(host) == "" {
		host = os.Getenv("DATABASE_HOST")
	}
	if port <= 0 {
		if env := strings.TrimSpace(os.Getenv("DATABASE_PORT")); env != "" {
			p, err := strconv.Atoi(env)
			if err != nil {
				return config.DatabaseConfig{}, fmt.Errorf("parse DATABASE_PORT: %w", err)
			}
			port = p
		}
	}
	if strings.TrimSpace(name) == "" {
		name = os.Getenv("POSTGRES_DB")
	}
	if strings.TrimSpace(user) == "" {
		user = os.Getenv("POSTGRES_USER")
	}
	if strings.TrimSpace(password) == "" {
		password = os.Getenv("POSTGRES_PASSWORD")
	}
	if strings.TrimSpace(sslmode) == "" {
		sslmode = os.Getenv("DATABASE_SSLMODE")
	}

	if strings.TrimSpace(host) == "" {
		host = "localhost"
	}
	if port <= 0 {
		port = 5432
	}
	if strings.TrimSpace(sslmode) == "" {
		sslmode = "disable"
	}
	if strings.TrimSpace(name) == "" {
		return config.DatabaseConfig{}, errors.New("database name is required (POSTGRES_DB)")
	}
	if strings.TrimSpace(user) == "" {
		return config.DatabaseConfig{}, errors.New("database user is required (POSTGRES_USER)")
	}
	if strings.TrimSpace(password) == "" {
		return config.DatabaseConfig{}, errors.New("database password is required (POSTGRES_PASSWORD)")
	}

	return config.DatabaseConfig{
		Host:     host,
		Port:     port,
		Name:     name,
		User:     user,
		Password: password,
		SSLMode:  sslmode,
	}, nil
}
