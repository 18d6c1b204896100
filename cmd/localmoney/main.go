package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/urfave/cli/v2"
)

var (
	localmoneyDataDir = appDataDir("localmoney-operator")
	statePath         = path.Join(localmoneyDataDir, "state.json")
)

func main() {
	app := cli.NewApp()

	app.Version = "0.0.1"
	app.Name = "localmoney operator CLI"
	app.Usage = "Command line interface for localmoneyd daemon operators"
	app.Commands = append(
		app.Commands,
		&config,
		&listtrades,
		&gettrade,
		&reassignarbitrator,
		&listarbitrators,
		&registerarbitrator,
		&setarbitratoractive,
		&pausecmd,
		&resumecmd,
		&getprotocolconfig,
		&updatefees,
	)

	err := app.Run(os.Args)
	if err != nil {
		fatal(err)
	}
}

func appDataDir(appName string) string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "." + appName
	}
	return filepath.Join(homeDir, "."+appName)
}

func getState() (map[string]string, error) {
	data := map[string]string{}

	file, err := os.ReadFile(statePath)
	if err != nil {
		return nil, errors.New("get config state error: try 'config init'")
	}
	json.Unmarshal(file, &data)

	return data, nil
}

func setState(data map[string]string) error {
	if _, err := os.Stat(localmoneyDataDir); os.IsNotExist(err) {
		os.Mkdir(localmoneyDataDir, os.ModeDir|0755)
	}

	currentData, err := getState()
	if err != nil {
		currentData = map[string]string{}
	}

	mergedData := merge(currentData, data)

	jsonString, err := json.Marshal(mergedData)
	if err != nil {
		return err
	}
	if err := os.WriteFile(statePath, jsonString, 0644); err != nil {
		return fmt.Errorf("writing to file: %w", err)
	}

	return nil
}

func merge(maps ...map[string]string) map[string]string {
	merge := make(map[string]string, 0)
	for _, m := range maps {
		for k, v := range m {
			merge[k] = v
		}
	}
	return merge
}

func getBaseURL() (string, error) {
	state, err := getState()
	if err != nil {
		return "", err
	}
	addr, ok := state["rpcserver"]
	if !ok {
		return "", errors.New("rpcserver not set: try 'config init'")
	}
	return "http://" + addr, nil
}

func callDaemon(method, urlPath string, body interface{}) (json.RawMessage, error) {
	baseURL, err := getBaseURL()
	if err != nil {
		return nil, err
	}
	state, _ := getState()

	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequest(method, baseURL+urlPath, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if actor, ok := state["actor"]; ok {
		req.Header.Set("X-Actor-Address", actor)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("daemon returned %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

func printRespJSON(resp json.RawMessage) {
	var out bytes.Buffer
	if err := json.Indent(&out, resp, "", "\t"); err != nil {
		fmt.Println("unable to decode response: ", err)
		return
	}

	fmt.Println(out.String())
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "[localmoney] %v\n", err)
	os.Exit(1)
}
