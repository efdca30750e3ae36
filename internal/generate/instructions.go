package generate

import (
	"fmt"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"dossier/internal/logging"
)

// Built-in system instructions per stage. A YAML file can override any of
// them without a rebuild, and edits hot-reload while the service runs.
var defaultInstructions = map[string]string{
	StagePositioning: `You are a senior marketing strategist. From the gathered intelligence,
produce a positioning analysis of the primary company relative to the comparison companies.
Respond with a single JSON object: {"title": string, "summary": string, "key_findings": [string]}.
No prose outside the JSON object.`,

	StageLandscape: `You are a competitive-intelligence analyst. Write the competitive landscape
chapters of the report in markdown. Separate chapters with lines of the exact form
<<SECTION: Chapter Name>>. Cover market position, content strategy, and share of voice.`,

	StageChannels: `You are a growth consultant. Based on the gathered intelligence and the prior
analysis, write channel-by-channel recommendations (organic search, social, paid) in markdown.
Separate each channel with a line of the exact form <<SECTION: Channel Name>>.`,

	StageExecutive: `You are the lead author. Synthesize the prior analysis into an executive
summary. Respond with a single JSON object: {"title": string, "summary": string,
"key_findings": [string]}. No prose outside the JSON object.`,
}

// instructionsFile is the YAML override format.
type instructionsFile struct {
	Stages map[string]string `yaml:"stages"`
}

// Instructions serves per-stage system instructions, optionally overridden
// from a YAML file that is watched for edits.
type Instructions struct {
	mu        sync.RWMutex
	overrides map[string]string
	path      string
	watcher   *fsnotify.Watcher
	done      chan struct{}
}

// LoadInstructions returns the instruction set, reading overrides from path
// when it is non-empty. A missing file leaves the defaults in place.
func LoadInstructions(path string) (*Instructions, error) {
	ins := &Instructions{
		overrides: make(map[string]string),
		path:      path,
	}
	if path == "" {
		return ins, nil
	}
	if err := ins.reload(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return ins, nil
}

func (i *Instructions) reload() error {
	data, err := os.ReadFile(i.path)
	if err != nil {
		return err
	}

	var f instructionsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("failed to parse instructions %s: %w", i.path, err)
	}

	i.mu.Lock()
	i.overrides = f.Stages
	i.mu.Unlock()

	logging.Stage("instructions reloaded from %s (%d overrides)", i.path, len(f.Stages))
	return nil
}

// Watch hot-reloads the override file on every write until Close.
func (i *Instructions) Watch() error {
	if i.path == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(i.path); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", i.path, err)
	}

	i.watcher = watcher
	i.done = make(chan struct{})

	go func() {
		defer close(i.done)
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					if err := i.reload(); err != nil {
						logging.Get(logging.CategoryStage).Warn("instructions reload failed: %v", err)
					}
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return nil
}

// Close stops the watcher, if running.
func (i *Instructions) Close() error {
	if i.watcher == nil {
		return nil
	}
	err := i.watcher.Close()
	<-i.done
	i.watcher = nil
	return err
}

// For returns the system instructions for a stage: the override when one is
// present, the built-in default otherwise.
func (i *Instructions) For(stage string) string {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if s, found := i.overrides[stage]; found && s != "" {
		return s
	}
	return defaultInstructions[stage]
}
