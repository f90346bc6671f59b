package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/valyala/fasthttp"
)

type loginReply struct {
	Status string `json:"status"`
	Error  string `json:"error"`
	Data   struct {
		ID        string    `json:"id"`
		UserID    string    `json:"user_id"`
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
	} `json:"data"`
}

func loginCmd() *cobra.Command {
	var displayName string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Open a session and print its bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID := viper.GetString("user-id")
			if userID == "" {
				return fmt.Errorf("--user-id is required")
			}
			body, err := json.Marshal(map[string]string{"user_id": userID, "display_name": displayName})
			if err != nil {
				return err
			}

			req := fasthttp.AcquireRequest()
			resp := fasthttp.AcquireResponse()
			defer fasthttp.ReleaseRequest(req)
			defer fasthttp.ReleaseResponse(resp)

			req.SetRequestURI(strings.TrimRight(viper.GetString("base-url"), "/") + "/api/v1/auth/login")
			req.Header.SetMethod(fasthttp.MethodPost)
			req.Header.SetContentType("application/json")
			req.SetBody(body)

			timeout := viper.GetDuration("timeout")
			if timeout <= 0 {
				timeout = 10 * time.Second
			}
			if err := fasthttp.DoTimeout(req, resp, timeout); err != nil {
				return fmt.Errorf("login: %w", err)
			}

			var reply loginReply
			if err := json.Unmarshal(resp.Body(), &reply); err != nil {
				return fmt.Errorf("login: decode response (HTTP %d): %w", resp.StatusCode(), err)
			}
			if resp.StatusCode() != fasthttp.StatusCreated {
				return fmt.Errorf("login: HTTP %d: %s", resp.StatusCode(), reply.Error)
			}

			out := cmd.OutOrStdout()
			if viper.GetBool("json") {
				return json.NewEncoder(out).Encode(reply.Data)
			}
			fmt.Fprintf(out, "export FEEDCTL_TOKEN=%s\n", reply.Data.Token)
			fmt.Fprintf(out, "# session %s expires %s\n", reply.Data.ID, reply.Data.ExpiresAt.Local().Format(time.RFC1123))
			return nil
		},
	}
	cmd.Flags().StringVar(&displayName, "display-name", "", "name to register on first login")
	return cmd
}
