package models

// ComplianceReport is the read-only rollup returned by the compliance reporter
type ComplianceReport struct {
	Namespace     string `json:"namespace"`
	AsOf          Date   `json:"asOf"`
	ThresholdDays int    `json:"thresholdDays"`

	TotalDeadlines       int                    `json:"totalDeadlines"`
	DeadlinesByStatus    map[DeadlineStatus]int `json:"deadlinesByStatus"`
	MissedJurisdictional int                    `json:"missedJurisdictional"`

	ExtensionsRequested  int     `json:"extensionsRequested"`
	ExtensionsPending    int     `json:"extensionsPending"`
	ExtensionsApproved   int     `json:"extensionsApproved"`
	ExtensionsDenied     int     `json:"extensionsDenied"`
	ExtensionGrantRate   float64 `json:"extensionGrantRate"`
	AverageExtensionDays float64 `json:"averageExtensionDays"`

	SpeedyTrialClocks      int `json:"speedyTrialClocks"`
	SpeedyTrialViolations  int `json:"speedyTrialViolations"`
	SpeedyTrialApproaching int `json:"speedyTrialApproaching"`
}
