/*
Package loader reads machine definitions from YAML or JSON documents.

A definition is a mapping with an initial state and a states mapping; each
state may carry a description and a transitions mapping from event to target:

	initial: idle
	states:
	  idle:
	    description: Waiting for work
	    transitions:
	      start: running
	  running:
	    transitions:
	      stop: idle

Mapping order is significant: states and transitions keep the order in which
they appear in the document. JSON documents use the same shape.
*/
package loader
