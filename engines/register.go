// Package engines is a registration root: importing it for side effects
// runs every concrete engine's init(), populating the engine.Register
// registry. Callers that only need one or two engines can import the
// concrete subpackages directly instead.
package engines

import (
	_ "mantiskv/engines/blackhole"
	_ "mantiskv/engines/hashengine"
	_ "mantiskv/engines/radixengine"
	_ "mantiskv/engines/robinhood"
	_ "mantiskv/engines/sortedengine"
	_ "mantiskv/engines/vhashengine"
	_ "mantiskv/engines/vsortedengine"
)
