package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/satchel-app/satchel/internal/store"
)

// NewLoginCommand creates the login command.
func NewLoginCommand(rootOpts *RootOptions) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:           "login",
		Short:         "Sign in, online when possible, offline against the local mirror otherwise",
		Example:       `  satchel login --email ana@example.com --password secret`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := formatter(rootOpts, cmd)
			app, err := openApp(cmd, rootOpts)
			if err != nil {
				return out.Fail(err)
			}
			defer app.Close()

			ident, err := app.Session.SignIn(cmd.Context(), email, password)
			if err != nil {
				return out.Fail(err)
			}

			mode := "online"
			if ident.Offline {
				mode = "offline"
			}
			return out.Success(
				fmt.Sprintf("Signed in as %s (%s, %s)", ident.Email, ident.Role, mode),
				map[string]any{
					"user_id": ident.UserID,
					"email":   ident.Email,
					"role":    ident.Role,
					"offline": ident.Offline,
				})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	return cmd
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "logout",
		Short:         "Sign out; the cart and local mirror survive",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := formatter(rootOpts, cmd)
			app, err := openApp(cmd, rootOpts)
			if err != nil {
				return out.Fail(err)
			}
			defer app.Close()

			if err := app.Session.SignOut(cmd.Context()); err != nil {
				return out.Fail(err)
			}
			return out.Success("Signed out.", nil)
		},
	}
}

// NewRegisterCommand creates the register command.
func NewRegisterCommand(rootOpts *RootOptions) *cobra.Command {
	var email, password, name, phone, country string

	cmd := &cobra.Command{
		Use:           "register",
		Short:         "Create an account (requires connectivity)",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := formatter(rootOpts, cmd)
			app, err := openApp(cmd, rootOpts)
			if err != nil {
				return out.Fail(err)
			}
			defer app.Close()

			profile := store.Profile{DisplayName: name, Phone: phone, Country: country}
			ident, err := app.Session.Register(cmd.Context(), profile, email, password)
			if err != nil {
				return out.Fail(err)
			}
			return out.Success(
				fmt.Sprintf("Registered and signed in as %s", ident.Email),
				map[string]any{"user_id": ident.UserID, "email": ident.Email})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&country, "country", "", "country")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	return cmd
}

// NewProfileCommand creates the profile command group.
func NewProfileCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or edit the signed-in profile",
	}
	cmd.AddCommand(newProfileShowCommand(rootOpts))
	cmd.AddCommand(newProfileUpdateCommand(rootOpts))
	cmd.AddCommand(newProfilePrefsCommand(rootOpts))
	return cmd
}

func newProfileShowCommand(rootOpts *RootOptions) *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:           "show",
		Short:         "Show the locally mirrored profile",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := formatter(rootOpts, cmd)
			app, err := openApp(cmd, rootOpts)
			if err != nil {
				return out.Fail(err)
			}
			defer app.Close()

			ident, err := app.requireIdentity()
			if err != nil {
				return out.Fail(err)
			}
			if refresh {
				if err := app.Syncer.RefreshProfile(cmd.Context(), ident.UserID); err != nil {
					return out.Fail(err)
				}
			}
			u, err := app.Syncer.Profile(cmd.Context(), ident.UserID)
			if err != nil {
				return out.Fail(err)
			}
			return out.Success(renderProfile(u), map[string]any{
				"email": u.Email, "display_name": u.Profile.DisplayName,
				"role": u.Role, "preferences": u.Prefs,
			})
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "fetch the profile from the service first (requires connectivity)")
	return cmd
}

func newProfileUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	var name, nickname, phone, gender, country, address string

	cmd := &cobra.Command{
		Use:           "update",
		Short:         "Push profile edits to the service (requires connectivity)",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := formatter(rootOpts, cmd)
			app, err := openApp(cmd, rootOpts)
			if err != nil {
				return out.Fail(err)
			}
			defer app.Close()

			ident, err := app.requireIdentity()
			if err != nil {
				return out.Fail(err)
			}
			current, err := app.Syncer.Profile(cmd.Context(), ident.UserID)
			if err != nil {
				return out.Fail(err)
			}

			p := current.Profile
			applyIfSet(cmd, "name", &p.DisplayName, name)
			applyIfSet(cmd, "nickname", &p.Nickname, nickname)
			applyIfSet(cmd, "phone", &p.Phone, phone)
			applyIfSet(cmd, "gender", &p.Gender, gender)
			applyIfSet(cmd, "country", &p.Country, country)
			applyIfSet(cmd, "address", &p.Address, address)

			if err := app.Syncer.UpdateProfile(cmd.Context(), ident.UserID, p); err != nil {
				return out.Fail(err)
			}
			return out.Success("Profile updated.", nil)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&nickname, "nickname", "", "nickname")
	cmd.Flags().StringVar(&phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&gender, "gender", "", "gender")
	cmd.Flags().StringVar(&country, "country", "", "country")
	cmd.Flags().StringVar(&address, "address", "", "address")
	return cmd
}

func newProfilePrefsCommand(rootOpts *RootOptions) *cobra.Command {
	var notifications, camera bool

	cmd := &cobra.Command{
		Use:           "prefs",
		Short:         "Set notification/camera toggles (kept locally, mirrored when online)",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := formatter(rootOpts, cmd)
			app, err := openApp(cmd, rootOpts)
			if err != nil {
				return out.Fail(err)
			}
			defer app.Close()

			ident, err := app.requireIdentity()
			if err != nil {
				return out.Fail(err)
			}
			current, err := app.Syncer.Profile(cmd.Context(), ident.UserID)
			if err != nil {
				return out.Fail(err)
			}

			prefs := current.Prefs
			if cmd.Flags().Changed("notifications") {
				prefs.NotificationsEnabled = notifications
			}
			if cmd.Flags().Changed("camera") {
				prefs.CameraEnabled = camera
			}
			if err := app.Syncer.SetPreferences(cmd.Context(), ident.UserID, prefs); err != nil {
				return out.Fail(err)
			}
			return out.Success(fmt.Sprintf("Notifications: %s  Camera: %s",
				onOff(prefs.NotificationsEnabled), onOff(prefs.CameraEnabled)), prefs)
		},
	}

	cmd.Flags().BoolVar(&notifications, "notifications", false, "enable notifications")
	cmd.Flags().BoolVar(&camera, "camera", false, "enable camera access")
	return cmd
}

// applyIfSet overwrites dst with value only when the flag was given, so
// unset flags leave the current profile field alone.
func applyIfSet(cmd *cobra.Command, flag string, dst *string, value string) {
	if cmd.Flags().Changed(flag) {
		*dst = value
	}
}
