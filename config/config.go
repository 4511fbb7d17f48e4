package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/bacoteatro/taquilla/internal/models"
)

type Config struct {
	Port     string `mapstructure:"server.port"`
	LogLevel string `mapstructure:"logging.level"`
	DB       DatabaseConfig
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"db.host"`
	Port            string        `mapstructure:"db.port"`
	User            string        `mapstructure:"db.user"`
	Password        string        `mapstructure:"db.password"`
	Name            string        `mapstructure:"db.name"`
	SSLMode         string        `mapstructure:"db.sslmode"`
	MaxOpenConns    int           `mapstructure:"db.max_open_conns"`
	MaxIdleConns    int           `mapstructure:"db.max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"db.conn_max_lifetime"`
}

func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", "8080")
	v.SetDefault("logging.level", "info")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "taquilla")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", time.Hour)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		Port:     v.GetString("server.port"),
		LogLevel: v.GetString("logging.level"),
		DB: DatabaseConfig{
			Host:            v.GetString("db.host"),
			Port:            v.GetString("db.port"),
			User:            v.GetString("db.user"),
			Password:        v.GetString("db.password"),
			Name:            v.GetString("db.name"),
			SSLMode:         v.GetString("db.sslmode"),
			MaxOpenConns:    v.GetInt("db.max_open_conns"),
			MaxIdleConns:    v.GetInt("db.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("db.conn_max_lifetime"),
		},
	}
	return cfg, nil
}

func InitDatabase(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		cfg.DB.Host, cfg.DB.User, cfg.DB.Password, cfg.DB.Name, cfg.DB.Port, cfg.DB.SSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)

	if err := db.AutoMigrate(&models.User{}, &models.Event{}, &models.Sale{}); err != nil {
		return nil, err
	}

	seedUsers(db)
	seedEvents(db)

	return db, nil
}

func seedUsers(db *gorm.DB) {
	defaults := []struct {
		Name     string
		Email    string
		Password string
		Phone    string
		Role     models.Role
	}{
		{"Super Usuario", "superuser@teatro.com", "super123", "555-0000", models.RoleSuperuser},
		{"Director Escenico", "director@teatro.com", "director123", "555-2222", models.RoleDirector},
		{"Actor Principal", "actor@teatro.com", "actor123", "555-3333", models.RoleActor},
		{"Cliente Test", "cliente@teatro.com", "cliente123", "555-1111", models.RoleCliente},
	}

	for _, d := range defaults {
		var existing models.User
		result := db.Where("email = ?", d.Email).First(&existing)
		if result.Error == nil {
			continue
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(d.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Warn().Err(err).Str("email", d.Email).Msg("Failed to hash seed password")
			continue
		}
		user := models.User{
			Name:     d.Name,
			Email:    d.Email,
			Password: string(hashed),
			Phone:    d.Phone,
			Role:     d.Role,
		}
		if err := db.Create(&user).Error; err != nil {
			log.Warn().Err(err).Str("email", d.Email).Msg("Failed to seed user")
		}
	}
}

func seedEvents(db *gorm.DB) {
	var count int64
	if err := db.Model(&models.Event{}).Count(&count).Error; err != nil || count > 0 {
		return
	}

	events := []models.Event{
		{Name: "Romeo y Julieta", Date: "2024-12-20", Time: "20:00", Venue: "Teatro Principal", PriceCents: 2500, Available: 100,
			Description: "Clasica obra de Shakespeare sobre el amor prohibido entre dos jovenes de familias rivales.",
			ImageURL:    "https://picsum.photos/400/300?random=1"},
		{Name: "La Casa de Bernarda Alba", Date: "2024-12-22", Time: "19:30", Venue: "Teatro Nacional", PriceCents: 3000, Available: 80,
			Description: "Drama de Federico Garcia Lorca sobre el poder y la represion en una familia espanola.",
			ImageURL:    "https://picsum.photos/400/300?random=2"},
		{Name: "El Avaro", Date: "2024-12-25", Time: "21:00", Venue: "Teatro Municipal", PriceCents: 2000, Available: 120,
			Description: "Comedia de Moliere que critica la avaricia y la obsesion por el dinero.",
			ImageURL:    "https://picsum.photos/400/300?random=3"},
		{Name: "Hamlet", Date: "2024-12-28", Time: "20:30", Venue: "Teatro Real", PriceCents: 3500, Available: 90,
			Description: "La tragedia de venganza mas famosa de Shakespeare.",
			ImageURL:    "https://picsum.photos/400/300?random=4"},
		{Name: "La vida es sueno", Date: "2024-12-30", Time: "19:00", Venue: "Teatro Calderon", PriceCents: 2800, Available: 110,
			Description: "Obra maestra de Calderon de la Barca sobre el libre albedrio y el destino.",
			ImageURL:    "https://picsum.photos/400/300?random=5"},
	}

	for _, event := range events {
		if err := db.Create(&event).Error; err != nil {
			log.Warn().Err(err).Str("event", event.Name).Msg("Failed to seed event")
		}
	}
}
