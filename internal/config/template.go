package config

// Template is the commented starter file written by init-config.
const Template = `# envscan configuration
# Values here are overridden by command-line flags and ENVSCAN_* variables
# (for example ENVSCAN_SCAN_MAX_DEPTH=4).

scan:
  # Globs selecting files to scan. Leave empty to scan every file of a known language.
  include: []

  # Extra globs to skip, on top of node_modules, vendor, dist and friends.
  # Directories matching a glob are not entered at all.
  exclude: []
    # - "testdata"
    # - "*.gen.go"

  max_depth: 10
  parallel: true
  # 0 uses one worker per CPU.
  workers: 0
  max_file_size: 2097152

  # Also report lines that look like hard-coded credentials.
  secrets: false
  # Lowest severity reported by secret detection: low, medium, high or critical.
  min_severity: low

ignores:
  # Variables that should never be reported as missing, typically ones
  # provided by the platform at runtime.
  missing: []
    # - "HOME"
    # - "CI"

  # Folders whose usages never count as missing (e.g. scripts or fixtures).
  # A bare name matches at any depth, a path matches from the scan root.
  folders: []
    # - "scripts"
    # - "src/config"
`
