package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/hellogate/internal/config"
	"github.com/dropDatabas3/hellogate/internal/jwt"
	"github.com/dropDatabas3/hellogate/internal/security/sealedsession"
)

func main() {
	var cfgPath string
	var envFile string

	root := &cobra.Command{
		Use:   "hellogate",
		Short: "Gateway de autenticación AuthKit → tokens locales",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// .env opcional; los secretos de deploy llegan por environment
			if envFile != "" {
				_ = godotenv.Load(envFile)
			} else {
				_ = godotenv.Load()
			}
		},
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "ruta al YAML de configuración (opcional)")
	root.PersistentFlags().StringVar(&envFile, "env-file", "", "ruta a un .env alternativo")

	root.AddCommand(serveCmd(&cfgPath))
	root.AddCommand(sealCmd())
	root.AddCommand(mintCmd(&cfgPath))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// sealCmd sella/abre un blob de sesión con una cookie password. Para
// debugging local: permite fabricar cookies y verificar qué hay adentro.
func sealCmd() *cobra.Command {
	var password, access, refresh, email string
	var open string

	cmd := &cobra.Command{
		Use:   "seal",
		Short: "Sella (o abre con --open) un blob de sesión",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("WORKOS_COOKIE_PASSWORD")
			}
			if password == "" {
				return fmt.Errorf("falta --password (o WORKOS_COOKIE_PASSWORD)")
			}

			if open != "" {
				sess, err := sealedsession.Unseal(open, password)
				if err != nil {
					return err
				}
				out, _ := json.MarshalIndent(sess, "", "  ")
				fmt.Println(string(out))
				return nil
			}

			sess := &sealedsession.Session{AccessToken: access, RefreshToken: refresh}
			sess.User.Email = email
			blob, err := sealedsession.Seal(sess, password)
			if err != nil {
				return err
			}
			fmt.Println(blob)
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "cookie password (default: WORKOS_COOKIE_PASSWORD)")
	cmd.Flags().StringVar(&access, "access", "", "access token a sellar")
	cmd.Flags().StringVar(&refresh, "refresh", "", "refresh token a sellar")
	cmd.Flags().StringVar(&email, "email", "", "email del usuario")
	cmd.Flags().StringVar(&open, "open", "", "blob sellado a abrir en vez de sellar")
	return cmd
}

// mintCmd acuña un par de tokens para un email. Para probar endpoints
// protegidos sin pasar por el flujo de AuthKit.
func mintCmd(cfgPath *string) *cobra.Command {
	var email, firstName, lastName string

	cmd := &cobra.Command{
		Use:   "mint",
		Short: "Acuña un par access/refresh para un email",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return fmt.Errorf("falta --email")
			}
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			iss, err := jwt.NewIssuer(
				cfg.JWT.Issuer,
				cfg.JWT.Audience,
				cfg.JWT.SigningSeed,
				config.MustDuration(cfg.JWT.AccessTTL, time.Hour),
				config.MustDuration(cfg.JWT.RefreshTTL, 168*time.Hour),
			)
			if err != nil {
				return err
			}
			pair, err := iss.MintPair(jwt.Subject{
				Key:       email,
				Email:     email,
				FirstName: firstName,
				LastName:  lastName,
			})
			if err != nil {
				return err
			}
			out, _ := json.MarshalIndent(pair, "", "  ")
			fmt.Println(string(out))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email (sub) del token")
	cmd.Flags().StringVar(&firstName, "first-name", "", "nombre")
	cmd.Flags().StringVar(&lastName, "last-name", "", "apellido")
	return cmd
}
