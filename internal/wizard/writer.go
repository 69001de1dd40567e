package wizard

import (
	"fmt"
	"os"
	"strings"
	"time"

	"sigs.k8s.io/yaml"

	"github.com/imamik/magnum-capi/api/v1alpha1"
)

// Function variable for dependency injection in tests.
var confirmOverwrite = defaultConfirmOverwrite

// recordFile is the on-disk shape of a record written by the wizard. Status
// fields are left out: the driver sets them on create.
type recordFile struct {
	ID                string                `json:"id"`
	Name              string                `json:"name,omitempty"`
	UserID            string                `json:"userID"`
	ProjectID         string                `json:"projectID,omitempty"`
	KeyPair           string                `json:"keyPair,omitempty"`
	Labels            map[string]string     `json:"labels,omitempty"`
	ExternalNetworkID string                `json:"externalNetworkID,omitempty"`
	FixedNetwork      string                `json:"fixedNetwork,omitempty"`
	FixedSubnet       string                `json:"fixedSubnet,omitempty"`
	DNSNameserver     string                `json:"dnsNameserver,omitempty"`
	MasterLBEnabled   bool                  `json:"masterLBEnabled,omitempty"`
	NodeGroups        []recordFileNodeGroup `json:"nodeGroups"`
}

type recordFileNodeGroup struct {
	Name      string        `json:"name"`
	Role      v1alpha1.Role `json:"role"`
	NodeCount int           `json:"nodeCount"`
	FlavorID  string        `json:"flavorID,omitempty"`
	ImageID   string        `json:"imageID,omitempty"`
}

func toRecordFile(c v1alpha1.Cluster) recordFile {
	f := recordFile{
		ID:                c.ID,
		Name:              c.Name,
		UserID:            c.UserID,
		ProjectID:         c.ProjectID,
		KeyPair:           c.KeyPair,
		Labels:            c.Labels,
		ExternalNetworkID: c.ExternalNetworkID,
		FixedNetwork:      c.FixedNetwork,
		FixedSubnet:       c.FixedSubnet,
		DNSNameserver:     c.DNSNameserver,
		MasterLBEnabled:   c.MasterLBEnabled,
	}
	for _, ng := range c.NodeGroups {
		f.NodeGroups = append(f.NodeGroups, recordFileNodeGroup{
			Name:      ng.Name,
			Role:      ng.Role,
			NodeCount: ng.NodeCount,
			FlavorID:  ng.FlavorID,
			ImageID:   ng.ImageID,
		})
	}
	return f
}

// WriteRecord writes the record to a YAML file with a descriptive header.
func WriteRecord(c v1alpha1.Cluster, outputPath string) error {
	yamlBytes, err := yaml.Marshal(toRecordFile(c))
	if err != nil {
		return fmt.Errorf("failed to marshal cluster record: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(generateHeader(outputPath))
	sb.WriteString("\n")
	sb.Write(yamlBytes)

	if err := os.WriteFile(outputPath, []byte(sb.String()), 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// generateHeader creates the YAML file header comment.
func generateHeader(outputPath string) string {
	return fmt.Sprintf(`# magnum-capi cluster record
# Generated by: magnum-capi cluster init
# Generated at: %s
#
# Usage:
#   magnum-capi cluster create -f %s
`, time.Now().Format(time.RFC3339), outputPath)
}

// FileExists checks if a file exists at the given path.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ConfirmOverwrite prompts the user to confirm overwriting an existing file.
func ConfirmOverwrite(path string) (bool, error) {
	return confirmOverwrite(path)
}

// defaultConfirmOverwrite is the default implementation that prompts via stdin.
func defaultConfirmOverwrite(path string) (bool, error) {
	fmt.Printf("\nFile already exists: %s\n", path)
	fmt.Print("Overwrite? (y/n): ")

	var response string
	if _, err := fmt.Scanln(&response); err != nil {
		return false, err
	}

	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes", nil
}
