package stats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"survivorrl/internal/model"
)

const (
	comparisonFile = "comparison.json"
	rankingFile    = "ranking.csv"
	samplesSuffix  = "_rewards.csv"
)

// WriteComparisonReport writes comparison.json and ranking.csv under
// baseDir/<comparison id> and returns that directory.
func WriteComparisonReport(baseDir string, comparison model.ModelComparison) (string, error) {
	if strings.TrimSpace(comparison.ID) == "" {
		return "", fmt.Errorf("comparison id is required")
	}
	if sanitizeFileToken(comparison.ID) != comparison.ID {
		return "", fmt.Errorf("comparison id %q is not a plain file name", comparison.ID)
	}

	reportDir := filepath.Join(baseDir, comparison.ID)
	if err := os.MkdirAll(reportDir, 0o755); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(reportDir, comparisonFile), comparison); err != nil {
		return "", err
	}
	if err := writeRanking(filepath.Join(reportDir, rankingFile), comparison); err != nil {
		return "", err
	}
	return reportDir, nil
}

func ReadComparisonReport(baseDir, id string) (model.ModelComparison, bool, error) {
	path := filepath.Join(baseDir, id, comparisonFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.ModelComparison{}, false, nil
		}
		return model.ModelComparison{}, false, err
	}

	var comparison model.ModelComparison
	if err := json.Unmarshal(data, &comparison); err != nil {
		return model.ModelComparison{}, false, err
	}
	return comparison, true, nil
}

func writeRanking(path string, comparison model.ModelComparison) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"rank", "model", "episodes", "mean_reward", "std_dev", "min_reward", "max_reward"}); err != nil {
		return err
	}
	for i, name := range comparison.Ranking {
		result := comparison.Results[name]
		if err := writer.Write([]string{
			strconv.Itoa(i + 1),
			name,
			strconv.Itoa(result.EpisodeCount),
			formatFloat(result.MeanReward),
			formatFloat(result.StdDev),
			formatFloat(result.MinReward),
			formatFloat(result.MaxReward),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteEvaluationSamples writes the raw per-episode rewards of result as an
// episode,reward CSV directly under baseDir and returns its path. The file is
// named after the model; characters other than letters, digits, '-' and '_'
// become '_'.
func WriteEvaluationSamples(baseDir string, result model.EvaluationResult) (string, error) {
	if strings.TrimSpace(result.ModelName) == "" {
		return "", fmt.Errorf("model name is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return "", err
	}

	name := sanitizeFileToken(result.ModelName)
	if result.ModelVersion > 0 {
		name = fmt.Sprintf("%s_v%d", name, result.ModelVersion)
	}
	path := filepath.Join(baseDir, name+samplesSuffix)
	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"episode", "reward"}); err != nil {
		return "", err
	}
	for i, reward := range result.Rewards {
		if err := writer.Write([]string{strconv.Itoa(i + 1), formatFloat(reward)}); err != nil {
			return "", err
		}
	}
	writer.Flush()
	return path, writer.Error()
}

// ReadEvaluationSamples reads an episode,reward CSV. Only the second column
// is used.
func ReadEvaluationSamples(path string) ([]float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return []float64{}, nil
		}
		return nil, err
	}
	if len(header) < 2 {
		return nil, fmt.Errorf("reward samples header must have at least 2 columns")
	}

	rewards := make([]float64, 0, 128)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) < 2 {
			return nil, fmt.Errorf("reward samples row must have at least 2 columns")
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("parse reward on line %d: %w", len(rewards)+2, err)
		}
		rewards = append(rewards, value)
	}
	return rewards, nil
}

// sanitizeFileToken maps value onto letters, digits, '-' and '_' so it can
// be used as a single path element.
func sanitizeFileToken(value string) string {
	var b strings.Builder
	for _, r := range value {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('_')
	}
	token := strings.Trim(b.String(), "_")
	if token == "" {
		return "unknown"
	}
	return token
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}
