package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out of the VoluntApp API",
	Run: func(cmd *cobra.Command, args []string) {
		token := viper.GetString("token")
		if token != "" {
			req, _ := http.NewRequest(http.MethodPost, apiURL()+"/auth/logout", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			if resp, err := http.DefaultClient.Do(req); err == nil {
				resp.Body.Close()
			}
		}

		viper.Set("token", "")
		viper.Set("email", "")
		if err := viper.WriteConfig(); err != nil {
			fmt.Printf("Warning: failed to write config: %v\n", err)
		}
		fmt.Println("Successfully logged out.")
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
