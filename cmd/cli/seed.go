package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create a handful of sample opportunities",
	Run: func(cmd *cobra.Command, args []string) {
		token := viper.GetString("token")
		if token == "" {
			fmt.Println("Not logged in. Run `voluntapp login` first (as an organizer).")
			return
		}

		deadline := time.Now().AddDate(0, 0, 14).Format(time.RFC3339)
		start := time.Now().AddDate(0, 0, 21).Format(time.RFC3339)

		samples := []map[string]any{
			{
				"title":           "Apoyo escolar en el barrio",
				"description":     "Clases de apoyo para estudiantes de primaria.",
				"category":        "educacion",
				"enroll_deadline": deadline,
				"starts_at":       start,
				"hours":           4,
			},
			{
				"title":           "Campaña de vacunación",
				"description":     "Acompañamiento en centros de salud.",
				"category":        "salud",
				"enroll_deadline": deadline,
				"hours":           6,
			},
			{
				"title":       "Huerta comunitaria",
				"description": "Mantenimiento de la huerta del campus.",
				"category":    "ambiente",
				"hours":       3,
			},
		}

		client := &http.Client{Timeout: 10 * time.Second}
		created := 0
		for _, sample := range samples {
			body, _ := json.Marshal(sample)
			req, _ := http.NewRequest(http.MethodPost, apiURL()+"/opportunities", bytes.NewBuffer(body))
			req.Header.Set("Authorization", "Bearer "+token)
			req.Header.Set("Content-Type", "application/json")

			resp, err := client.Do(req)
			if err != nil {
				fmt.Printf("Failed to create %q: %v\n", sample["title"], err)
				continue
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusCreated {
				fmt.Printf("Failed to create %q: status %s\n", sample["title"], resp.Status)
				continue
			}
			created++
		}
		fmt.Printf("Created %d sample opportunities.\n", created)
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
