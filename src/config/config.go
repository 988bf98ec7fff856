package config

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultConfigName = "config.json"
	ConfigPathEnvVar  = "CSD2_BOT_CONFIG"
	DotenvPathEnvVar  = "CSD2_BOT_ENV"
	EnvPrefix         = "CSD2"
)

var ErrInvalid = errors.New("invalid configuration")

type LoadOptions struct {
	ConfigPathOverride string
	LogLevelOverride   string
}

// ROI is a screen rectangle in virtual-screen pixels.
type ROI struct {
	Top    int `mapstructure:"top" validate:"gte=0"`
	Left   int `mapstructure:"left" validate:"gte=0"`
	Width  int `mapstructure:"width" validate:"gte=0"`
	Height int `mapstructure:"height" validate:"gte=0"`
}

func (r ROI) Rect() image.Rectangle {
	return image.Rect(r.Left, r.Top, r.Left+r.Width, r.Top+r.Height)
}

func (r ROI) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

type Point struct {
	X int `mapstructure:"x"`
	Y int `mapstructure:"y"`
}

type Controls struct {
	InputKeys      []string `mapstructure:"input_keys" validate:"required,min=1,dive,required"`
	ConfirmKey     string   `mapstructure:"confirm_key" validate:"required"`
	PageTurnKey    string   `mapstructure:"page_turn_key" validate:"required"`
	ChoresSequence []string `mapstructure:"chores_sequence" validate:"dive,required"`
	PourKey        string   `mapstructure:"pour_key" validate:"required"`
	StopHotkey     string   `mapstructure:"stop_hotkey"`
}

type RecipeTrigger struct {
	CheckPixelX      int   `mapstructure:"check_pixel_x"`
	CheckPixelY      int   `mapstructure:"check_pixel_y"`
	ExpectedColorRGB []int `mapstructure:"expected_color_rgb" validate:"omitempty,len=3,dive,gte=0,lte=255"`
	Tolerance        int   `mapstructure:"tolerance" validate:"gte=0,lte=255"`
}

func (t RecipeTrigger) Point() image.Point { return image.Pt(t.CheckPixelX, t.CheckPixelY) }

func (t RecipeTrigger) Color() color.RGBA { return rgb(t.ExpectedColorRGB) }

type BotSettings struct {
	FuzzyMatchingEnabled   bool    `mapstructure:"fuzzy_matching_enabled"`
	MultiStepCharThreshold int     `mapstructure:"multi_step_char_threshold" validate:"gte=1"`
	FuzzyMatchThreshold    float64 `mapstructure:"fuzzy_match_threshold" validate:"gte=0"`
	CaseSensitive          bool    `mapstructure:"case_sensitive"`
	ReuseSlots             bool    `mapstructure:"reuse_slots"`

	MainLoopDelay   float64 `mapstructure:"main_loop_delay" validate:"gte=0"`
	PageDelay       float64 `mapstructure:"page_delay" validate:"gte=0"`
	KeyDelay        float64 `mapstructure:"key_delay" validate:"gte=0"`
	PourHoldSeconds float64 `mapstructure:"pour_hold_seconds" validate:"gte=0"`

	EnableFailsafe   bool `mapstructure:"enable_failsafe"`
	FailsafeCornerPx int  `mapstructure:"failsafe_corner_px" validate:"gte=0"`

	MinConfidence          float64 `mapstructure:"min_confidence" validate:"gte=0,lte=100"`
	OCRUpscaleFactor       float64 `mapstructure:"ocr_upscale_factor" validate:"gt=0"`
	RightPanelShearFactor  float64 `mapstructure:"right_panel_shear_factor"`
	HorizontalGapThreshold int     `mapstructure:"horizontal_gap_threshold" validate:"gte=0"`
	OCRLanguage            string  `mapstructure:"ocr_language" validate:"required"`

	LoggingLevel      string `mapstructure:"logging_level" validate:"oneof=debug info warn error"`
	EnableFileLogging bool   `mapstructure:"enable_file_logging"`

	RecipeTrigger RecipeTrigger `mapstructure:"recipe_trigger"`
}

func (b BotSettings) MainLoopDelayDuration() time.Duration { return seconds(b.MainLoopDelay) }
func (b BotSettings) PageDelayDuration() time.Duration     { return seconds(b.PageDelay) }
func (b BotSettings) KeyDelayDuration() time.Duration      { return seconds(b.KeyDelay) }
func (b BotSettings) PourHoldDuration() time.Duration      { return seconds(b.PourHoldSeconds) }

type OCRRegions struct {
	RecipeListROI      ROI     `mapstructure:"recipe_list_roi"`
	IngredientPanelROI ROI     `mapstructure:"ingredient_panel_roi"`
	IngredientSlotROIs []ROI   `mapstructure:"ingredient_slot_rois" validate:"dive"`
	SlotLabelPolygon   []Point `mapstructure:"slot_label_polygon" validate:"omitempty,min=3"`
}

type PageColor struct {
	RGB       []int `mapstructure:"rgb" validate:"len=3,dive,gte=0,lte=255"`
	Tolerance int   `mapstructure:"tolerance" validate:"gte=0,lte=255"`
}

func (p PageColor) Color() color.RGBA { return rgb(p.RGB) }

type RecipeLayout struct {
	RecipeSlotROIs         []ROI       `mapstructure:"recipe_slot_rois" validate:"dive"`
	RecipeIndicatorPoints  []Point     `mapstructure:"recipe_indicator_points"`
	PageColors             []PageColor `mapstructure:"page_colors" validate:"max=3,dive"`
	PageIndicators         []Point     `mapstructure:"page_indicators" validate:"max=2"`
	IndicatorMinSaturation float64     `mapstructure:"indicator_min_saturation" validate:"gte=0,lte=1"`
}

type Config struct {
	Controls    Controls     `mapstructure:"controls"`
	BotSettings BotSettings  `mapstructure:"bot_settings"`
	OCRRegions  OCRRegions   `mapstructure:"ocr_regions"`
	Layout      RecipeLayout `mapstructure:"recipe_layout"`

	// ConfigFile is the file that was read, empty when only defaults apply.
	ConfigFile string
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	// Sources in priority order (highest first):
	// 1) explicit overrides in opts
	// 2) CSD2_* environment, including values from .env
	// 3) config.json
	// 4) defaults
	if envPath := resolveEnvPath(); envPath != "" {
		_ = godotenv.Load(envPath)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configFile := resolveConfigPath(opts)
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	if lvl := strings.TrimSpace(opts.LogLevelOverride); lvl != "" {
		v.Set("bot_settings.logging_level", strings.ToLower(lvl))
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.ConfigFile = configFile

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("controls.input_keys", []string{"A", "S", "D", "F", "Z", "X", "C", "V"})
	v.SetDefault("controls.confirm_key", "Enter")
	v.SetDefault("controls.page_turn_key", "Tab")
	v.SetDefault("controls.chores_sequence", []string{"A", "S", "D", "F"})
	v.SetDefault("controls.pour_key", "A")
	v.SetDefault("controls.stop_hotkey", "Ctrl+Alt+Q")

	v.SetDefault("bot_settings.fuzzy_matching_enabled", true)
	v.SetDefault("bot_settings.multi_step_char_threshold", 20)
	v.SetDefault("bot_settings.fuzzy_match_threshold", 0.6)
	v.SetDefault("bot_settings.case_sensitive", true)
	v.SetDefault("bot_settings.reuse_slots", false)
	v.SetDefault("bot_settings.main_loop_delay", 1.0)
	v.SetDefault("bot_settings.page_delay", 0.25)
	v.SetDefault("bot_settings.key_delay", 0.05)
	v.SetDefault("bot_settings.pour_hold_seconds", 2.5)
	v.SetDefault("bot_settings.enable_failsafe", true)
	v.SetDefault("bot_settings.failsafe_corner_px", 2)
	v.SetDefault("bot_settings.min_confidence", 50)
	v.SetDefault("bot_settings.ocr_upscale_factor", 2.0)
	v.SetDefault("bot_settings.right_panel_shear_factor", 0.14)
	v.SetDefault("bot_settings.horizontal_gap_threshold", 30)
	v.SetDefault("bot_settings.ocr_language", "eng")
	v.SetDefault("bot_settings.logging_level", "info")
	v.SetDefault("bot_settings.enable_file_logging", false)
	v.SetDefault("bot_settings.recipe_trigger.check_pixel_x", 0)
	v.SetDefault("bot_settings.recipe_trigger.check_pixel_y", 0)
	v.SetDefault("bot_settings.recipe_trigger.tolerance", 10)

	v.SetDefault("recipe_layout.indicator_min_saturation", 0.35)
}

// Validate checks the struct tags and the cross-field rules.
func (c *Config) Validate() error {
	var problems []string
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		for _, fe := range verrs {
			problems = append(problems, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
		}
	}

	if n := len(c.OCRRegions.IngredientSlotROIs); n > len(c.Controls.InputKeys) {
		problems = append(problems, fmt.Sprintf("ocr_regions.ingredient_slot_rois has %d slots but only %d input keys", n, len(c.Controls.InputKeys)))
	}
	if len(c.Layout.RecipeIndicatorPoints) != 0 && len(c.Layout.RecipeIndicatorPoints) != len(c.Layout.RecipeSlotROIs) {
		problems = append(problems, "recipe_layout.recipe_indicator_points must match recipe_slot_rois")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

func resolveEnvPath() string {
	if execPath, err := os.Executable(); err == nil {
		exeEnv := filepath.Join(filepath.Dir(execPath), ".env")
		if _, err := os.Stat(exeEnv); err == nil {
			return exeEnv
		}
	}

	if alt := os.Getenv(DotenvPathEnvVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

func resolveConfigPath(opts LoadOptions) string {
	if p := strings.TrimSpace(opts.ConfigPathOverride); p != "" {
		return p
	}
	if p := strings.TrimSpace(os.Getenv(ConfigPathEnvVar)); p != "" {
		return p
	}

	var candidates []string
	if execPath, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(execPath), DefaultConfigName))
	}
	candidates = append(candidates, DefaultConfigName)
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

func seconds(f float64) time.Duration {
	if f <= 0 {
		return 0
	}
	return time.Duration(f * float64(time.Second))
}

func rgb(c []int) color.RGBA {
	if len(c) != 3 {
		return color.RGBA{}
	}
	return color.RGBA{R: uint8(c[0]), G: uint8(c[1]), B: uint8(c[2]), A: 255}
}
