package walk

import "github.com/sideeffffect/emil/message"

// Processor is a callback passed to the AndProcess() family of functions to
// perform generic processing of a message and its sub-parts.
//
// The Processor receives the part being visited and the ancestry of that
// part. A zero-length parents slice means this is the top-level part (the
// part AndProcess() was called on, which may itself be a sub-part of some
// larger message).
//
// Returning an error terminates the walk immediately and AndProcess() returns
// that error.
type Processor func(part message.Part, parents []message.Part) error

// AndProcess walks the part tree of a message (or a part of a message) depth
// first, calling the given Processor for every part found, branches and
// leaves alike. It returns nil once every part has been processed, or the
// first error a Processor call returns.
func AndProcess(
	processor Processor,
	msg message.Part,
) error {
	parents := make([]message.Part, 0, 10)
	return andProcess(processor, msg, parents)
}

// AndProcessOpaque is AndProcess limited to leaves: the Processor is called
// only for parts without sub-parts.
func AndProcessOpaque(
	processor Processor,
	msg message.Part,
) error {
	return AndProcess(
		func(part message.Part, parents []message.Part) error {
			if part.IsMultipart() {
				return nil
			}
			return processor(part, parents)
		}, msg,
	)
}

// AndProcessMultipart is AndProcess limited to branches: the Processor is
// called only for parts with sub-parts.
func AndProcessMultipart(
	processor Processor,
	msg message.Part,
) error {
	return AndProcess(
		func(part message.Part, parents []message.Part) error {
			if !part.IsMultipart() {
				return nil
			}
			return processor(part, parents)
		}, msg,
	)
}

func andProcess(
	processor Processor,
	part message.Part,
	parents []message.Part,
) error {
	err := processor(part, parents)
	if err != nil {
		return err
	}

	if part.IsMultipart() {
		parents = append(parents, part)
		for _, subPart := range part.GetParts() {
			err := andProcess(processor, subPart, parents)
			if err != nil {
				return err
			}
		}
	}

	return nil
}
