package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the VoluntApp API",
	Run: func(cmd *cobra.Command, args []string) {
		var email, password string
		scanner := bufio.NewScanner(os.Stdin)
		fmt.Print("Email: ")
		scanner.Scan()
		email = strings.TrimSpace(scanner.Text())
		fmt.Print("Password: ")
		scanner.Scan()
		password = strings.TrimSpace(scanner.Text())

		body, _ := json.Marshal(map[string]string{
			"email":    email,
			"password": password,
		})

		resp, err := http.Post(apiURL()+"/auth/login", "application/json", bytes.NewBuffer(body))
		if err != nil {
			fmt.Printf("Error connecting to API: %v\n", err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			fmt.Println("Login failed. Check your credentials.")
			return
		}

		var loginResp struct {
			Token string `json:"token"`
		}
		json.NewDecoder(resp.Body).Decode(&loginResp)

		viper.Set("token", loginResp.Token)
		viper.Set("email", email)
		if err := viper.WriteConfig(); err != nil {
			fmt.Printf("Warning: failed to write config: %v\n", err)
		}

		fmt.Println("Successfully logged in!")
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
}
