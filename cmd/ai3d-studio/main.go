package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ai3d-studio",
	Short: "AI3D Studio web backend",
	Long: `AI3D Studio sirve las páginas de la aplicación, la autenticación
(email/contraseña, Google y GitHub) y el stream de eventos de sesión por pestaña.

Subcomandos:
  serve   - Levanta el servidor HTTP
  migrate - Aplica el esquema de base de datos`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
