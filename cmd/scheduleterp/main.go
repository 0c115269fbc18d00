package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrygo/scheduleterp/internal/profile"
	"github.com/hrygo/scheduleterp/server"
	"github.com/hrygo/scheduleterp/store"
	"github.com/hrygo/scheduleterp/store/db"
)

const version = "0.1.0"

var (
	rootCmd = &cobra.Command{
		Use:   "scheduleterp",
		Short: `A schedule conflict engine for course planning.`,
		Run: func(_ *cobra.Command, _ []string) {
			instanceProfile := &profile.Profile{
				Mode:                viper.GetString("mode"),
				Addr:                viper.GetString("addr"),
				Port:                viper.GetInt("port"),
				Data:                viper.GetString("data"),
				Driver:              viper.GetString("driver"),
				DSN:                 viper.GetString("dsn"),
				Version:             version,
				TravelTimeBaseURL:   viper.GetString("travel-time-url"),
				TravelTimeTimeout:   viper.GetDuration("travel-time-timeout"),
				TravelTimeRPS:       viper.GetFloat64("travel-time-rps"),
				TravelCacheTTL:      viper.GetDuration("travel-cache-ttl"),
				TravelCacheCapacity: viper.GetInt("travel-cache-capacity"),
				OracleConcurrency:   viper.GetInt("oracle-concurrency"),
				APIRPS:              viper.GetFloat64("api-rps"),
			}
			instanceProfile.FromEnv()
			if err := instanceProfile.Validate(); err != nil {
				slog.Error("invalid profile", "error", err)
				os.Exit(1)
			}
			setupLogger(instanceProfile)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			var storeInstance *store.Store
			if instanceProfile.HasStore() {
				dbDriver, err := db.NewDBDriver(instanceProfile)
				if err != nil {
					slog.Error("failed to create db driver", "error", err)
					return
				}
				storeInstance = store.New(dbDriver, instanceProfile)
				if err := storeInstance.Migrate(ctx); err != nil {
					slog.Error("failed to migrate", "error", err)
					return
				}
			}

			s, err := server.NewServer(ctx, instanceProfile, storeInstance)
			if err != nil {
				slog.Error("failed to create server", "error", err)
				return
			}

			c := make(chan os.Signal, 1)
			// Trigger graceful shutdown on SIGINT or SIGTERM.
			// The default signal sent by the `kill` command is SIGTERM,
			// which is taken as the graceful shutdown signal for many systems, eg., Kubernetes, Gunicorn.
			signal.Notify(c, os.Interrupt, syscall.SIGTERM)

			if err := s.Start(ctx); err != nil {
				slog.Error("failed to start server", "error", err)
				return
			}

			printGreetings(instanceProfile)

			<-c
			s.Shutdown(ctx)
		},
	}
)

func init() {
	viper.SetDefault("mode", "dev")
	viper.SetDefault("driver", "")
	viper.SetDefault("port", 8081)

	rootCmd.PersistentFlags().String("mode", "dev", `mode of server, can be "prod" or "dev"`)
	rootCmd.PersistentFlags().String("addr", "", "address of server")
	rootCmd.PersistentFlags().Int("port", 8081, "port of server")
	rootCmd.PersistentFlags().String("data", "", "data directory for the sqlite travel-time store")
	rootCmd.PersistentFlags().String("driver", "", `travel-time store driver, "sqlite" or "postgres"; empty keeps estimates in memory only`)
	rootCmd.PersistentFlags().String("dsn", "", "database source name (aka. DSN)")
	rootCmd.PersistentFlags().String("travel-time-url", "", "base URL of the travel-time service")
	rootCmd.PersistentFlags().Duration("travel-time-timeout", 0, "timeout of one travel-time request")
	rootCmd.PersistentFlags().Float64("travel-time-rps", 0, "travel-time requests per second")
	rootCmd.PersistentFlags().Duration("travel-cache-ttl", 0, "how long a travel-time estimate stays fresh")
	rootCmd.PersistentFlags().Int("travel-cache-capacity", 0, "in-memory travel-time cache entries")
	rootCmd.PersistentFlags().Int("oracle-concurrency", 0, "concurrent travel-time lookups per classification")
	rootCmd.PersistentFlags().Float64("api-rps", 0, "API requests per second per client")

	for _, name := range []string{
		"mode", "addr", "port", "data", "driver", "dsn",
		"travel-time-url", "travel-time-timeout", "travel-time-rps",
		"travel-cache-ttl", "travel-cache-capacity", "oracle-concurrency", "api-rps",
	} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("scheduleterp")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func setupLogger(p *profile.Profile) {
	var handler slog.Handler
	if p.IsDev() {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(handler).With("version", p.Version))
}

func printGreetings(p *profile.Profile) {
	fmt.Printf("scheduleterp %s started successfully!\n", p.Version)
	fmt.Println("Data directory:", p.Data)
	fmt.Println("Store driver:", storeDescription(p))
	fmt.Println("Travel-time service:", p.TravelTimeBaseURL)
	if p.Addr == "" {
		fmt.Printf("Server running on port %d\n", p.Port)
		fmt.Printf("Access your engine at: http://localhost:%d\n", p.Port)
	} else {
		fmt.Printf("Server running on %s:%d\n", p.Addr, p.Port)
		fmt.Printf("Access your engine at: http://%s:%d\n", p.Addr, p.Port)
	}
	fmt.Println()
}

func storeDescription(p *profile.Profile) string {
	if !p.HasStore() {
		return "memory"
	}
	return p.Driver
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		panic(err)
	}
}
