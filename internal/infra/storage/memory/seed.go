package memory

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// Seed начальные данные хранилища в памяти (TOML)
type Seed struct {
	ServiceCenters []SeedServiceCenter `toml:"service_centers"`
	Users          []SeedUser          `toml:"users"`
	Vehicles       []SeedVehicle       `toml:"vehicles"`
	Offerings      []SeedOffering      `toml:"offerings"`
}

type SeedServiceCenter struct {
	ID           int64  `toml:"id"`
	Name         string `toml:"name"`
	Address      string `toml:"address"`
	Active       bool   `toml:"active"`
	SlotCapacity int    `toml:"slot_capacity"`
}

type SeedUser struct {
	ID              int64    `toml:"id"`
	Name            string   `toml:"name"`
	Email           string   `toml:"email"`
	Active          bool     `toml:"active"`
	Roles           []string `toml:"roles"`
	ServiceCenterID int64    `toml:"service_center_id"` // только для сотрудников
}

type SeedVehicle struct {
	ID              int64      `toml:"id"`
	OwnerID         int64      `toml:"owner_id"`
	Brand           string     `toml:"brand"`
	Model           string     `toml:"model"`
	LicensePlate    string     `toml:"license_plate"`
	LastServiceDate *time.Time `toml:"last_service_date"`
}

type SeedOffering struct {
	ID              int64   `toml:"id"`
	Kind            string  `toml:"kind"`
	Name            string  `toml:"name"`
	DurationMinutes int     `toml:"duration_minutes"`
	Cost            float64 `toml:"cost"`
}

// LoadSeed читает начальные данные из TOML файла
func LoadSeed(path string) (*Seed, error) {
	var seed Seed
	if _, err := toml.DecodeFile(path, &seed); err != nil {
		return nil, fmt.Errorf("memory: decode seed file %s: %w", path, err)
	}
	return &seed, nil
}

// Apply загружает начальные данные в хранилище
func (s *Store) Apply(seed *Seed) error {
	for _, c := range seed.ServiceCenters {
		if c.SlotCapacity < 0 {
			return fmt.Errorf("memory: service center %d: negative slot capacity", c.ID)
		}
		s.AddServiceCenter(domain.ServiceCenter{
			ID:           c.ID,
			Name:         c.Name,
			Address:      c.Address,
			Active:       c.Active,
			SlotCapacity: c.SlotCapacity,
		})
	}

	for _, o := range seed.Offerings {
		kind, err := domain.ParseAppointmentType(o.Kind)
		if err != nil {
			return fmt.Errorf("memory: offering %d: invalid kind %q", o.ID, o.Kind)
		}
		s.AddOffering(domain.Offering{
			ID:                       o.ID,
			Kind:                     kind,
			Name:                     o.Name,
			EstimatedDurationMinutes: o.DurationMinutes,
			Cost:                     o.Cost,
		})
	}

	for _, u := range seed.Users {
		user := domain.User{
			ID:     u.ID,
			Name:   u.Name,
			Email:  u.Email,
			Active: u.Active,
		}
		for _, raw := range u.Roles {
			user.Roles = append(user.Roles, domain.ParseRoles(raw)...)
		}
		s.AddUser(user)

		if u.ServiceCenterID != 0 {
			s.SetEmployeeCenter(u.ID, u.ServiceCenterID)
		}
	}

	for _, v := range seed.Vehicles {
		s.AddVehicle(domain.Vehicle{
			ID:              v.ID,
			OwnerID:         v.OwnerID,
			Brand:           v.Brand,
			Model:           v.Model,
			LicensePlate:    v.LicensePlate,
			LastServiceDate: v.LastServiceDate,
		})
	}

	return nil
}
