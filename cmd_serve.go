package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/PixPMusic/ampswitcher/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP remote control",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !viper.GetBool("debug") {
			gin.SetMode(gin.ReleaseMode)
		}

		ctl, shutdown, err := openController(nil)
		if err != nil {
			return err
		}
		defer shutdown()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return api.NewServer(ctl).Run(ctx, viper.GetString("listen"))
	},
}

func init() {
	serveCmd.Flags().String("listen", "127.0.0.1:8765", "address to listen on")
	_ = viper.BindPFlag("listen", serveCmd.Flags().Lookup("listen"))
}
