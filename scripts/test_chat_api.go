package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/fatih/color"
)

const baseURL = "http://localhost:8000"

// Pretty print JSON helper
func prettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(b))
}

// Request helper
func sendRequest(method, url, token string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+url, bodyReader)
	if err != nil {
		return nil, nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{} // generation can take a while, no timeout
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func decode(body []byte) map[string]interface{} {
	var m map[string]interface{}
	json.Unmarshal(body, &m)
	return m
}

func main() {
	color.Cyan("🚀 Starting Chat Session API Test\n")

	// 1. Register a throwaway user
	color.Yellow("\n1. Register")
	username := fmt.Sprintf("smoke_%d", os.Getpid())
	resp, body, err := sendRequest("POST", "/register/", "", map[string]interface{}{
		"username": username,
		"email":    username + "@example.com",
		"password": "secret123",
	})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	registerResp := decode(body)
	prettyPrint(registerResp)

	token, _ := registerResp["token"].(string)
	if token == "" {
		color.Red("No token in register response, aborting")
		os.Exit(1)
	}

	// 2. Token check
	color.Yellow("\n2. Test Token")
	resp, body, _ = sendRequest("GET", "/test_token/", token, nil)
	color.Green("Status: %s", resp.Status)
	prettyPrint(decode(body))

	// 3. First turn creates a session (expect 201)
	color.Yellow("\n3. First Turn (new session)")
	resp, body, err = sendRequest("POST", "/chats/", token, map[string]interface{}{
		"content": "Hello there!",
	})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	chatResp := decode(body)
	prettyPrint(chatResp)
	chatID, _ := chatResp["chat_id"].(string)

	// 4. Second turn continues the same session (expect 200)
	color.Yellow("\n4. Second Turn (same session)")
	resp, body, _ = sendRequest("POST", "/chats/", token, map[string]interface{}{
		"content": "And how are you today?",
	})
	color.Green("Status: %s", resp.Status)
	prettyPrint(decode(body))

	// 5. Edit the first message. end_session as a string on purpose, the
	// coercion path is part of the surface under test.
	color.Yellow("\n5. Edit First Message")
	var messageID string
	if conv, ok := chatResp["conversation"].([]interface{}); ok && len(conv) > 0 {
		if turn, ok := conv[0].(map[string]interface{}); ok {
			messageID, _ = turn["message_id"].(string)
		}
	}
	if chatID != "" && messageID != "" {
		resp, body, _ = sendRequest("PATCH", "/chats/"+chatID+"/messages/"+messageID+"/", token, map[string]interface{}{
			"content": "Hello there! (edited)",
		})
		color.Green("Status: %s", resp.Status)
		prettyPrint(decode(body))
	} else {
		color.Red("Skipped: no chat_id/message_id in create response")
	}

	// 6. End the session with a string flag
	color.Yellow("\n6. End Session (end_session=\"true\")")
	resp, body, _ = sendRequest("POST", "/chats/", token, map[string]interface{}{
		"end_session": "true",
	})
	color.Green("Status: %s", resp.Status)
	prettyPrint(decode(body))

	// 7. Ending again must 404
	color.Yellow("\n7. End Again (expect 404)")
	resp, body, _ = sendRequest("POST", "/chats/", token, map[string]interface{}{
		"end_session": true,
	})
	color.Green("Status: %s", resp.Status)
	prettyPrint(decode(body))

	// 8. List history
	color.Yellow("\n8. List Chats")
	resp, body, _ = sendRequest("GET", "/chats/", token, nil)
	color.Green("Status: %s", resp.Status)
	var list []interface{}
	json.Unmarshal(body, &list)
	prettyPrint(list)

	// 9. Delete the session
	if chatID != "" {
		color.Yellow("\n9. Delete Chat")
		resp, _, _ = sendRequest("DELETE", "/chats/"+chatID+"/", token, nil)
		color.Green("Status: %s", resp.Status)
	}

	color.Cyan("\n✅ Done")
}
