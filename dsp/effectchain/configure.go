package effectchain

import "fmt"

func wrapConfigureErr(err error) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("effectchain: configure: %w", err)
}

// firstErr runs each setter in order and returns the first failure.
func firstErr(setters ...func() error) error {
	for _, set := range setters {
		err := set()
		if err != nil {
			return wrapConfigureErr(err)
		}
	}

	return nil
}
