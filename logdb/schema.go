// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

// amounts are 8 byte big-endian blobs since sqlite integers are signed.
const eventTableSchema = `
CREATE TABLE IF NOT EXISTS event (
	seq INTEGER PRIMARY KEY,
	time INTEGER NOT NULL,
	kind TEXT NOT NULL,
	account BLOB(20) NOT NULL,
	counterparty BLOB(20),
	stakeID INTEGER,
	packageIndex INTEGER,
	amount BLOB(8) NOT NULL,
	extra BLOB(8) NOT NULL
);

CREATE INDEX IF NOT EXISTS event_account ON event(account);
CREATE INDEX IF NOT EXISTS event_kind ON event(kind);
CREATE INDEX IF NOT EXISTS event_stake ON event(stakeID);
`
