// The voxa server: plans voice commands through the tiered planner and runs
// them against the configured backend, exposing an HTTP control API and a
// websocket status stream.
package main

import (
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/voxa-project/voxa-agent/api"
	"github.com/voxa-project/voxa-agent/appdb"
	"github.com/voxa-project/voxa-agent/config"
	"github.com/voxa-project/voxa-agent/contacts"
	"github.com/voxa-project/voxa-agent/executor"
	"github.com/voxa-project/voxa-agent/llm"
	"github.com/voxa-project/voxa-agent/logger"
	"github.com/voxa-project/voxa-agent/memory"
	"github.com/voxa-project/voxa-agent/planner"
	"github.com/voxa-project/voxa-agent/scheduler"
	"github.com/voxa-project/voxa-agent/websocket"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "voxa:", err)
		os.Exit(1)
	}
}

func run() error {
	env, err := config.LoadEnv()
	if err != nil {
		return err
	}

	apiPort := flag.Int("port", env.APIPort, "HTTP API port")
	wsPort := flag.Int("ws-port", env.WSPort, "websocket status port")
	configPath := flag.String("config", env.ConfigPath, "agent YAML config path")
	memoryPath := flag.String("memory", env.MemoryPath, "memory file path")
	flag.Parse()

	if level, err := logger.ParseLevel(env.LogLevel); err == nil {
		logger.SetGlobalLevel(level)
	}
	log := logger.New("voxa")

	agentCfg, err := config.LoadAgentConfig(*configPath)
	if err != nil {
		return err
	}

	mem, err := memory.Open(*memoryPath)
	if err != nil {
		return err
	}

	apps := appdb.New(nil)
	for _, app := range agentCfg.Apps {
		apps.Register(app.Name, appdb.AppInfo{
			PackageName: app.Package,
			Aliases:     app.Aliases,
		})
	}

	var contactStore contacts.Store
	if len(agentCfg.Contacts) > 0 {
		store := contacts.NewMemoryStore()
		for _, c := range agentCfg.Contacts {
			store.Add(contacts.Contact{Name: c.Name, Number: c.Phone})
		}
		contactStore = store
	}

	var remote *planner.RemotePlanner
	client, err := llm.NewFromEnv()
	switch {
	case err == nil:
		remote = planner.NewRemotePlanner(client, apps)
	case errors.Is(err, llm.ErrLLMDisabled):
		log.Warn("no LLM credentials, running on rule tiers only")
	default:
		return err
	}

	cascade := planner.NewCascade(
		planner.NewRules(apps, mem),
		planner.NewContactResolver(contactStore, apps, mem),
		remote,
		apps,
		mem,
	)

	status := websocket.NewStatusServer(*wsPort)
	if err := status.Start(); err != nil {
		return err
	}
	defer status.Stop()

	exec := executor.New(executor.NewLogBackend(), websocket.Sink{Server: status}, mem)
	exec.SetSafetyCeiling(agentCfg.Executor.SafetyCeiling)
	exec.SetDefaultDelay(time.Duration(agentCfg.Executor.DefaultDelayMS) * time.Millisecond)
	exec.SetCooldown(time.Duration(agentCfg.Executor.CooldownSeconds) * time.Second)
	sched := scheduler.New(cascade, exec)
	defer sched.Stop()

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", *apiPort),
		Handler: api.NewServer(cascade, exec, mem, sched).Handler(),
	}
	go func() {
		log.Info("API listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("API server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	exec.Stop()
	return server.Close()
}
