package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func init() {
	// say
	var participant, topic, discussion, userID string
	var fromUser, initial bool
	sayCmd := &cobra.Command{
		Use:   "say TEXT",
		Short: "Send a message to a participant and print its reply",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if participant != "llm1" && participant != "llm2" {
				return fmt.Errorf("--to must be llm1 or llm2")
			}
			if discussion == "" && userID == "" {
				discussion = uuid.NewString()
				fmt.Fprintf(cmd.ErrOrStderr(), "discussion: %s\n", discussion)
			}
			data, err := postJSON(apiFlag, "/api/"+participant+"/llm", map[string]interface{}{
				"text":               args[0],
				"topic":              topic,
				"is_user_message":    fromUser,
				"is_initial_message": initial,
				"discussion_id":      discussion,
				"user_id":            userID,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), data)
		},
	}
	sayCmd.Flags().StringVar(&participant, "to", "llm1", "Participant to address (llm1|llm2)")
	sayCmd.Flags().StringVarP(&topic, "topic", "t", "", "Discussion topic")
	sayCmd.Flags().StringVarP(&discussion, "discussion", "d", "", "Discussion ID (random when neither it nor --user is set)")
	sayCmd.Flags().StringVarP(&userID, "user", "u", "", "User ID")
	sayCmd.Flags().BoolVar(&fromUser, "from-user", true, "Mark the message as spoken by the human user")
	sayCmd.Flags().BoolVar(&initial, "initial", false, "Ask the participant to open the discussion")
	rootCmd.AddCommand(sayCmd)

	// evaluate
	evaluateCmd := &cobra.Command{
		Use:   "evaluate USER_ID",
		Short: "Request and print a fresh evaluation of a user's speech",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := check(newClient(apiFlag).R().
				SetPathParam("user_id", args[0]).
				Post("/api/user/{user_id}/gd-evaluation"))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), data)
		},
	}
	rootCmd.AddCommand(evaluateCmd)

	// tts
	var voice, out string
	ttsCmd := &cobra.Command{
		Use:   "tts TEXT",
		Short: "Synthesize speech and write the audio to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, ok := ttsPaths[voice]
			if !ok {
				return fmt.Errorf("--voice must be llm1, llm2 or alt")
			}
			audio, err := check(newClient(apiFlag).R().
				SetBody(map[string]string{"text": args[0]}).
				Post(path))
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, audio, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d bytes to %s\n", len(audio), out)
			return nil
		},
	}
	ttsCmd.Flags().StringVar(&voice, "voice", "llm1", "Voice to use (llm1|llm2|alt)")
	ttsCmd.Flags().StringVarP(&out, "out", "o", "speech.mp3", "Output file")
	rootCmd.AddCommand(ttsCmd)
}

var ttsPaths = map[string]string{
	"llm1": "/api/llm1/tts",
	"llm2": "/api/llm2/tts",
	"alt":  "/api/tts/alt",
}
