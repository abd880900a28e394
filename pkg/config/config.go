package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata" // Asia/Tokyo must resolve on minimal images.

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/spf13/viper"
)

const (
	DriverStorm    = "storm"
	DriverPostgres = "postgres"
)

type Config struct {
	Discord   Discord   `mapstructure:"discord"`
	Access    Access    `mapstructure:"access"`
	Storage   Storage   `mapstructure:"storage"`
	Web       Web       `mapstructure:"web"`
	Log       Log       `mapstructure:"log"`
	Lottery   Lottery   `mapstructure:"lottery"`
	Equipment Equipment `mapstructure:"equipment"`
	Roles     Roles     `mapstructure:"roles"`
	GitHub    GitHub    `mapstructure:"github"`
}

type Discord struct {
	Token string `mapstructure:"token"`
	AppID string `mapstructure:"app_id"`
	// GuildID registers commands on one guild instead of globally.
	GuildID string `mapstructure:"guild_id"`
}

type Access struct {
	AllowedUserIDs []string `mapstructure:"allowed_user_ids"`
	LurerUserIDs   []string `mapstructure:"lurer_user_ids"`
}

// Allowed reports whether userID may run moderator commands.
func (a Access) Allowed(userID string) bool {
	for _, id := range a.AllowedUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

type Storage struct {
	Driver      string `mapstructure:"driver"`
	Path        string `mapstructure:"path"`
	PostgresURL string `mapstructure:"postgres_url"`
}

type Web struct {
	Port string `mapstructure:"port"`
}

type Log struct {
	Environment string `mapstructure:"environment"`
}

type Lottery struct {
	Timezone string `mapstructure:"timezone"`
	// Seed fixes the shuffle for reproducible draws. 0 seeds from the clock.
	Seed int64 `mapstructure:"seed"`
}

type Biome struct {
	Name      string `mapstructure:"name"`
	SlotLimit int    `mapstructure:"slot_limit"`
}

func (b Biome) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.Name, validation.Required),
		validation.Field(&b.SlotLimit, validation.Required, validation.Min(1)),
	)
}

type Equipment struct {
	TablePath string  `mapstructure:"table_path"`
	Biomes    []Biome `mapstructure:"biomes"`
}

// BiomeNames lists the configured biomes in config order.
func (e Equipment) BiomeNames() []string {
	names := make([]string, 0, len(e.Biomes))
	for _, b := range e.Biomes {
		names = append(names, b.Name)
	}
	return names
}

type Grant struct {
	Threshold float64 `mapstructure:"threshold"`
	RoleID    string  `mapstructure:"role_id"`
}

func (g Grant) Validate() error {
	return validation.ValidateStruct(&g,
		validation.Field(&g.Threshold, validation.Required, validation.Min(1.0)),
		validation.Field(&g.RoleID, validation.Required, is.Digit),
	)
}

// Roles grants Discord roles to members whose best biome score reaches a
// threshold. Grants only happen for inventory updates made in GuildID and,
// when set, ChannelID.
type Roles struct {
	GuildID   string  `mapstructure:"guild_id"`
	ChannelID string  `mapstructure:"channel_id"`
	Grants    []Grant `mapstructure:"grants"`
}

// Applies reports whether an update made in guildID/channelID grants roles.
func (r Roles) Applies(guildID, channelID string) bool {
	if r.GuildID == "" || len(r.Grants) == 0 || r.GuildID != guildID {
		return false
	}
	return r.ChannelID == "" || r.ChannelID == channelID
}

type GitHub struct {
	Token string `mapstructure:"token"`
	Owner string `mapstructure:"owner"`
	Repo  string `mapstructure:"repo"`
}

// Enabled reports whether feature requests can be filed.
func (g GitHub) Enabled() bool {
	return g.Token != "" && g.Owner != "" && g.Repo != ""
}

// Location resolves the zone end times are typed in.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Lottery.Timezone)
	if err != nil {
		return nil, fmt.Errorf("time.LoadLocation -> %w", err)
	}
	return loc, nil
}

func (c *Config) Validate() error {
	err := validation.ValidateStruct(&c.Discord,
		validation.Field(&c.Discord.Token, validation.Required),
		validation.Field(&c.Discord.AppID, validation.Required, is.Digit),
		validation.Field(&c.Discord.GuildID, is.Digit),
	)
	if err != nil {
		return fmt.Errorf("discord: %w", err)
	}

	if len(c.Access.AllowedUserIDs) == 0 {
		return errors.New("access: allowed_user_ids must not be empty")
	}

	err = validation.ValidateStruct(&c.Storage,
		validation.Field(&c.Storage.Driver, validation.Required, validation.In(DriverStorm, DriverPostgres)),
	)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	switch c.Storage.Driver {
	case DriverStorm:
		err = validation.Validate(c.Storage.Path, validation.Required)
	case DriverPostgres:
		err = validation.Validate(c.Storage.PostgresURL, validation.Required)
	}
	if err != nil {
		return fmt.Errorf("storage: %s: %w", c.Storage.Driver, err)
	}

	err = validation.ValidateStruct(&c.Web,
		validation.Field(&c.Web.Port, validation.Required, is.Port),
	)
	if err != nil {
		return fmt.Errorf("web: %w", err)
	}

	err = validation.ValidateStruct(&c.Lottery,
		validation.Field(&c.Lottery.Timezone, validation.Required, validation.By(checkTimezone)),
	)
	if err != nil {
		return fmt.Errorf("lottery: %w", err)
	}

	err = validation.ValidateStruct(&c.Equipment,
		validation.Field(&c.Equipment.TablePath, validation.Required),
		validation.Field(&c.Equipment.Biomes, validation.Required),
	)
	if err != nil {
		return fmt.Errorf("equipment: %w", err)
	}

	err = validation.ValidateStruct(&c.Roles,
		validation.Field(&c.Roles.GuildID, is.Digit),
		validation.Field(&c.Roles.ChannelID, is.Digit),
		validation.Field(&c.Roles.Grants),
	)
	if err != nil {
		return fmt.Errorf("roles: %w", err)
	}

	return nil
}

func checkTimezone(value interface{}) error {
	name, _ := value.(string)
	if _, err := time.LoadLocation(name); err != nil {
		return errors.New("must be an IANA zone name")
	}
	return nil
}

// Load reads path (optional), then environment variables. Keys map to
// upper case env names with dots as underscores, e.g. DISCORD_TOKEN. The
// variable names used by earlier deployments are bound as well.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		if err := v.BindEnv(key, strings.ReplaceAll(strings.ToUpper(key), ".", "_"), env); err != nil {
			return nil, fmt.Errorf("v.BindEnv -> %w", err)
		}
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("v.ReadInConfig -> %w", err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("os.Stat -> %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("v.Unmarshal -> %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

var legacyEnv = map[string]string{
	"discord.token":        "TOKEN",
	"discord.app_id":       "CLIENT_ID",
	"web.port":             "PORT",
	"storage.postgres_url": "DATABASE_URL",
	"github.token":         "GITHUB",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("access.allowed_user_ids", []string{})
	v.SetDefault("access.lurer_user_ids", []string{})
	v.SetDefault("storage.driver", DriverStorm)
	v.SetDefault("storage.path", "lottery.db")
	v.SetDefault("web.port", "3000")
	v.SetDefault("log.environment", "production")
	v.SetDefault("lottery.timezone", "Asia/Tokyo")
	v.SetDefault("lottery.seed", 0)
	v.SetDefault("equipment.table_path", "equipment.json")
	v.SetDefault("equipment.biomes", []map[string]interface{}{
		{"name": "Fire Ant Hell", "slot_limit": 8},
		{"name": "Normal Ant Hell", "slot_limit": 7},
		{"name": "Desert", "slot_limit": 8},
		{"name": "Ocean", "slot_limit": 5},
	})
	v.SetDefault("github.owner", "")
	v.SetDefault("github.repo", "")
	v.SetDefault("discord.guild_id", "")
	v.SetDefault("roles.guild_id", "")
	v.SetDefault("roles.channel_id", "")
}
