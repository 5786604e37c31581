package cmd

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"streetview-download/internal/cache"
	"streetview-download/internal/config"
	"streetview-download/internal/downloads"
	"streetview-download/internal/streetview"
	"streetview-download/internal/telemetry"
)

// Version is the release version, set at build time via
// -ldflags "-X streetview-download/cmd.Version=...".
var Version = "dev"

var cfgFile string

var (
	userSettings *config.UserSettings
	tracker      *telemetry.Tracker
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "streetview-download",
	Short: "Download full-resolution Google Street View panoramas",
	Long: `streetview-download fetches the tiles of a Street View panorama,
assembles them into a single image and trims the black padding the tile
grid carries at partial zoom levels.

Examples:
  # Download a panorama from a share URL at the default zoom
  streetview-download download "https://www.google.com/maps/@48.8584,2.2945,3a,75y,247.27h,70.52t/data=!3m6!1e1!3m4!1sxbK9YuuJe1GMpPPMqGFocA!2e0"

  # Download by panorama ID at maximum resolution
  streetview-download download xbK9YuuJe1GMpPPMqGFocA --zoom 5 -o tower.jpg

  # Download every panorama listed in a file, four at a time
  streetview-download bulk panoramas.txt --parallel 4

  # Fetch the projected view a share URL renders
  streetview-download view "<share url>" -o view.jpg

  # Show the parameters encoded in a share URL
  streetview-download info "<share url>"

  # Start the HTTP API
  streetview-download serve --port 8080`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.Version = Version
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.streetview-download.yaml)")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".streetview-download"
		// (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".streetview-download")
	}

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadUserSettings loads the persisted user settings once per invocation.
// They provide the flag defaults, so viper and explicit flags still win.
func loadUserSettings() *config.UserSettings {
	if userSettings != nil {
		return userSettings
	}
	settings, err := config.LoadSettings()
	if err != nil {
		log.Printf("[CLI] failed to load settings, using defaults: %v", err)
		settings = config.DefaultSettings()
	}
	userSettings = settings
	return userSettings
}

func newClient() *streetview.Client {
	return streetview.NewClient(streetview.ClientConfig{})
}

// newTileCache builds the shared tile cache, or nil when the user settings
// disable caching.
func newTileCache() downloads.TileCache {
	settings := loadUserSettings()
	if settings.CacheMaxTiles < 0 {
		return nil
	}
	c, err := cache.NewTileCache(settings.CacheMaxTiles)
	if err != nil {
		log.Printf("[CLI] tile cache disabled: %v", err)
		return nil
	}
	return c
}

func newTracker() *telemetry.Tracker {
	if tracker == nil {
		tracker = telemetry.New(loadUserSettings())
	}
	return tracker
}
