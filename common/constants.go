package common

import (
	"time"
)

const DefaultClientTimeout = time.Minute

const DefaultAPIAddr = "localhost:9095"

const DefaultLedgerFile = "nodesched-ledger.json"
