package model

// GlobalConfig is the fully-merged, immutable-after-load configuration tree
// (§3). It is produced once per run by internal/config and never mutated.
type GlobalConfig struct {
	SevenZipPath                              string
	DefaultDestinationDir                      string
	DefaultScriptExcludeRecycleBin             bool
	DefaultScriptExcludeSysVolInfo             bool
	DefaultAdditionalExclusions                []string
	EnableVSS                                  bool
	TreatSevenZipWarningsAsSuccess             bool
	DeleteLocalArchiveAfterSuccessfulTransfer  bool
	BackupTargets                              map[string]TargetDef
	BackupLocations                            map[string]JobDef
	BackupSets                                 map[string]SetDef
	PostRunActionDefaults                      PostRunActionConfig
	MaintenanceModeFilePath                    string
	LogRetentionCount                          int

	// Extras holds top-level keys present in the source YAML that this
	// struct does not recognise, preserved for forward-compat warnings (§9).
	Extras map[string]any
}

type PostRunActionConfig struct {
	Action  PostRunAction
	Enabled bool
}

// JobDef is one `BackupLocations` entry, as authored by the operator.
// Every layered setting is an Optional so ConfigResolver can tell "job
// didn't set this" from "job explicitly set this to its zero value" (P1);
// Path, Name, TargetNames, DependsOnJobs, Schedule and AdditionalExclusions
// are plain values.
type JobDef struct {
	Path                          []string
	Name                          string
	DestinationDir                Optional[string]
	TargetNames                   []string
	DependsOnJobs                 []string
	Enabled                       Optional[bool]
	Schedule                      map[string]any
	ArchiveType                   Optional[string]
	CompressionLevel              Optional[int]
	CompressionMethod             Optional[string]
	DictionarySize                Optional[string]
	WordSize                      Optional[string]
	SolidBlockSize                Optional[string]
	CompressOpenFiles             Optional[bool]
	ThreadsSetting                Optional[int]
	FollowSymbolicLinks           Optional[bool]
	SevenZipTempDirectory         Optional[string]
	CreateSFX                     Optional[bool]
	SFXModule                     Optional[SFXModule]
	SplitVolumeSize               Optional[string]
	AdditionalExclusions          []string
	SevenZipIncludeListFile       Optional[string]
	SevenZipExcludeListFile       Optional[string]
	ArchivePasswordSource         Optional[ArchivePasswordSource]
	ArchivePasswordSecretName     Optional[string]
	ArchivePasswordPlain          Optional[string]
	ArchiveDateFormat             Optional[string]
	EnableVSS                     Optional[bool]
	VSSContextOption              Optional[string]
	VSSPollingTimeoutSeconds      Optional[int]
	VSSPollingIntervalSeconds     Optional[int]
	GenerateArchiveChecksum       Optional[bool]
	ChecksumAlgorithm             Optional[ChecksumAlgorithm]
	GenerateSplitArchiveManifest  Optional[bool]
	GenerateContentsManifest      Optional[bool]
	TestArchiveAfterCreation      Optional[bool]
	VerifyArchiveChecksumOnTest   Optional[bool]
	VerifyLocalArchiveBeforeTransfer Optional[bool]
	TestArchiveBeforeDeletion     Optional[bool]
	PinOnCreation                 Optional[bool]
	LocalRetentionCount           Optional[int]
	DeleteToRecycleBin            Optional[bool]
	RetentionConfirmDelete        Optional[bool]
	MinimumRequiredFreeSpaceGB    Optional[float64]
	ExitOnLowSpace                Optional[bool]
	TreatSevenZipWarningsAsSuccess Optional[bool]
	SevenZipCpuAffinity           Optional[string]
	SevenZipProcessPriority       Optional[ProcessPriority]
	MaxRetryAttempts              Optional[int]
	RetryDelaySeconds             Optional[int]
	EnableRetries                 Optional[bool]
	PreBackupScriptPath           Optional[string]
	PostLocalArchiveScriptPath    Optional[string]
	PostBackupScriptOnSuccessPath Optional[string]
	PostBackupScriptOnFailurePath Optional[string]
	PostBackupScriptAlwaysPath    Optional[string]
	PostRunAction                 Optional[PostRunActionConfig]
	LogRetentionCount             Optional[int]
}

// SetDef is one `BackupSets` entry.
type SetDef struct {
	JobNames           []string
	OnErrorInJob       OnErrorInJob
	PostRunAction      Optional[PostRunActionConfig]
	LogRetentionCount  Optional[int]
}

// TargetDef is one `BackupTargets` entry: a named remote transport
// configuration, opaque in its settings beyond Type (§4.5).
type TargetDef struct {
	Type                   string
	TargetSpecificSettings map[string]any
	CredentialsSecretName  string
	RemoteRetentionSettings RemoteRetentionSettings
}

type RemoteRetentionSettings struct {
	KeepCount int
}

// ResolvedTarget annotates a TargetDef with the name it was registered
// under, since TargetDef itself carries no name (§4.1).
type ResolvedTarget struct {
	Name string
	TargetDef
}

// EffectiveJobConfig is the fully-resolved, per-run configuration for one
// job (§3), the output of ConfigResolver.Resolve.
type EffectiveJobConfig struct {
	JobName    string
	SetName    string
	Path       []string
	BaseFileName string
	DestinationDir string
	DependsOnJobs []string

	ArchiveType           string
	CompressionLevel      int
	CompressionMethod     string
	DictionarySize        string
	WordSize              string
	SolidBlockSize        string
	CompressOpenFiles     bool
	ThreadsSetting        int
	FollowSymbolicLinks   bool
	SevenZipTempDirectory string
	CreateSFX             bool
	SFXModule             SFXModule
	SplitVolumeSize       string
	AdditionalExclusions  []string
	SevenZipIncludeListFile string
	SevenZipExcludeListFile string

	ArchivePasswordSource     ArchivePasswordSource
	ArchivePasswordSecretName string
	ArchivePasswordPlain      string

	ArchiveDateFormat string

	EnableVSS                 bool
	VSSContextOption          string
	VSSPollingTimeoutSeconds  int
	VSSPollingIntervalSeconds int

	GenerateArchiveChecksum         bool
	ChecksumAlgorithm               ChecksumAlgorithm
	GenerateSplitArchiveManifest    bool
	GenerateContentsManifest        bool
	TestArchiveAfterCreation        bool
	VerifyArchiveChecksumOnTest     bool
	VerifyLocalArchiveBeforeTransfer bool
	TestArchiveBeforeDeletion       bool
	PinOnCreation                   bool

	LocalRetentionCount    int
	DeleteToRecycleBin     bool
	RetentionConfirmDelete bool

	MinimumRequiredFreeSpaceGB float64
	ExitOnLowSpace             bool

	TreatSevenZipWarningsAsSuccess bool
	SevenZipCpuAffinity            string
	SevenZipProcessPriority        ProcessPriority

	MaxRetryAttempts  int
	RetryDelaySeconds int
	EnableRetries     bool

	PreBackupScriptPath           string
	PostLocalArchiveScriptPath    string
	PostBackupScriptOnSuccessPath string
	PostBackupScriptOnFailurePath string
	PostBackupScriptAlwaysPath    string

	PostRunAction     PostRunActionConfig
	LogRetentionCount int

	SevenZipPath string

	TargetInstances []ResolvedTarget

	// JobArchiveExtension is ".exe" under CreateSFX, else the archive
	// type's extension (".7z", ".zip", ...).
	JobArchiveExtension string
	// InternalArchiveExtension is always ".7z" when SplitVolumeSize is
	// set (7-Zip requires a real archive type before ".NNN"), else equal
	// to JobArchiveExtension.
	InternalArchiveExtension string

	SimulateMode bool
}
