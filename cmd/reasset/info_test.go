package main

import (
	"testing"
)

func TestInfoCommand(t *testing.T) {
	tests := []struct {
		name           string
		file           func(t *testing.T) string
		json           bool
		wantErr        bool
		wantContain    []string
		wantNotContain []string
	}{
		{
			name:        "variable container",
			file:        writeUVar,
			wantContain: []string{"Format: uvar", "Name: Settings", "Variables: 4", "Embedded containers: 1"},
		},
		{
			name:           "material file",
			file:           writeMDF,
			wantContain:    []string{"Format: mdf (revision 31)", "Materials: 1", "Body_Mat", "Shader/Standard/Body.fx"},
			wantNotContain: []string{"Variables:"},
		},
		{
			name:        "material file as JSON",
			file:        writeMDF,
			json:        true,
			wantContain: []string{`"kind": "mdf"`, `"revision": 31`, `"params": 2`},
		},
		{
			name:    "missing file",
			file:    func(t *testing.T) string { return t.TempDir() + "/missing.user.3" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			jsonOut = tt.json
			args := []string{tt.file(t)}

			output, err := captureOutput(t, func() error {
				return runInfo(args)
			})

			if (err != nil) != tt.wantErr {
				t.Fatalf("runInfo() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if tt.json {
				assertJSON(t, output)
			}
			assertContains(t, output, tt.wantContain)
			assertNotContains(t, output, tt.wantNotContain)
		})
	}
}
