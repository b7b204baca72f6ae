package main

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	// login
	loginCmd := &cobra.Command{
		Use:   "login ID_TOKEN",
		Short: "Exchange a Google ID token for the user profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := postJSON(apiFlag, "/api/auth/google", map[string]string{"token": args[0]})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), data)
		},
	}
	rootCmd.AddCommand(loginCmd)

	// speech
	var userID, topic string
	speechCmd := &cobra.Command{
		Use:   "speech TEXT",
		Short: "Store a transcribed utterance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := postJSON(apiFlag, "/api/user/speech", map[string]string{
				"user_id": userID, "text": args[0], "topic": topic,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), data)
		},
	}
	speechCmd.Flags().StringVarP(&userID, "user", "u", "", "User ID (required)")
	speechCmd.Flags().StringVarP(&topic, "topic", "t", "", "Discussion topic")
	_ = speechCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(speechCmd)

	// screenshot
	var shotUser, shotTopic string
	screenshotCmd := &cobra.Command{
		Use:   "screenshot IMAGE_FILE",
		Short: "Upload an image as a screenshot data URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			dataURL := fmt.Sprintf("data:%s;base64,%s", http.DetectContentType(raw), base64.StdEncoding.EncodeToString(raw))
			data, err := postJSON(apiFlag, "/api/user/screenshot", map[string]string{
				"user_id": shotUser, "image_data": dataURL, "topic": shotTopic,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), data)
		},
	}
	screenshotCmd.Flags().StringVarP(&shotUser, "user", "u", "", "User ID (required)")
	screenshotCmd.Flags().StringVarP(&shotTopic, "topic", "t", "", "Discussion topic")
	_ = screenshotCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(screenshotCmd)

	// user
	var withScreenshots bool
	userCmd := &cobra.Command{
		Use:   "user USER_ID",
		Short: "Show a user's stored record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/user/{user_id}/data"
			if withScreenshots {
				path = "/api/user/{user_id}/screenshots"
			}
			data, err := getJSON(apiFlag, path, map[string]string{"user_id": args[0]})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), data)
		},
	}
	userCmd.Flags().BoolVarP(&withScreenshots, "screenshots", "s", false, "Print full screenshot payloads instead of the record")
	rootCmd.AddCommand(userCmd)
}
